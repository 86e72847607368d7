package services

import (
	"strconv"

	"bridge_cao/app/records"
)

// FetchCustomersPage loads one page of customers and normalizes them to
// the flat row shape the XML assembly reads. Customers only exist on
// the v3 API, so the request is always pinned there.
func (s *Services) FetchCustomersPage(page, perPage int) ([]records.Record, error) {
	if perPage > 100 {
		perPage = 100
	}
	if perPage < 1 {
		perPage = 50
	}

	res, err := s.api.WithVersion("v3").Get("customers", map[string]string{
		"page":     strconv.Itoa(page),
		"per-page": strconv.Itoa(perPage),
		"limit":    strconv.Itoa(perPage),
		"offset":   strconv.Itoa((page - 1) * perPage),
		"sort":     "id",
	})
	if err != nil {
		return nil, err
	}

	list := records.ExtractList(res, "data", "customers")
	norm := make([]records.Record, 0, len(list))
	for _, raw := range list {
		if c := records.AsRecord(raw); c != nil {
			norm = append(norm, normalizeCustomer(c))
		}
	}
	return norm, nil
}

// normalizeCustomer flattens the grouped v3 customer payload. The v3
// listing carries no address block, those fields stay empty.
func normalizeCustomer(c records.Record) records.Record {
	return records.Record{
		"customers_id":     c["id"],
		"customers_cid":    records.Get(c, "personalInformation.customerNumber"),
		"customers_group":  c["customerGroup"],
		"customers_gender": records.Get(c, "personalInformation.gender"),

		"entry_company":        records.Get(c, "businessInformation.companyName"),
		"entry_firstname":      records.Get(c, "personalInformation.firstName"),
		"entry_lastname":       records.Get(c, "personalInformation.lastName"),
		"entry_street_address": "",
		"entry_postcode":       "",
		"entry_city":           "",
		"entry_suburb":         "",
		"entry_state":          "",
		"countries_iso_code_2": "",

		"customers_telephone":     records.Get(c, "contactInformation.phoneNumber"),
		"customers_fax":           records.Get(c, "contactInformation.faxNumber"),
		"customers_email_address": records.Get(c, "contactInformation.email"),

		"customers_dob": records.Get(c, "personalInformation.dateOfBirth"),
		"vat_id":        records.Get(c, "businessInformation.vatId"),

		"customers_info_date_account_created": records.Resolve(c, []string{"created", "createdAt"}, ""),
	}
}

// StreamAllCustomers pages through all customers and hands each
// normalized row to emit.
func (s *Services) StreamAllCustomers(perPage int, emit func(records.Record) error) error {
	// Mirror the page clamp so the short-page check sees the real size.
	if perPage > 100 {
		perPage = 100
	}
	if perPage < 1 {
		perPage = 50
	}
	for page := 1; ; page++ {
		rows, err := s.FetchCustomersPage(page, perPage)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := emit(row); err != nil {
				return err
			}
		}
		if len(rows) != perPage {
			return nil
		}
	}
}
