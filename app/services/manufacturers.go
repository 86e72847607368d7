package services

import (
	"strconv"

	"bridge_cao/app/integrations"
	"bridge_cao/app/records"
)

// FetchManufacturers loads one page of manufacturers. A v3 client falls
// back to v2 when the route is missing.
func (s *Services) FetchManufacturers(page, perPage int) ([]records.Record, error) {
	if s.api.Version() == "v3" {
		rows, err := s.fetchManufacturers(page, perPage, true)
		if err != nil {
			if integrations.IsNotFound(err) {
				s.log.Warn("v3 manufacturers endpoint missing, falling back to v2")
				return s.WithVersion("v2").fetchManufacturers(page, perPage, false)
			}
			return nil, err
		}
		return rows, nil
	}
	return s.fetchManufacturers(page, perPage, false)
}

func (s *Services) fetchManufacturers(page, perPage int, sorted bool) ([]records.Record, error) {
	perPage = clampPerPage(perPage)

	params := map[string]string{
		"page":     strconv.Itoa(page),
		"per-page": strconv.Itoa(perPage),
		"limit":    strconv.Itoa(perPage),
		"offset":   strconv.Itoa((page - 1) * perPage),
	}
	if sorted {
		params["sort"] = "id"
	}

	res, err := s.api.Get("manufacturers", params)
	if err != nil {
		return nil, err
	}
	return rowsOf(records.ExtractList(res, "data", "manufacturers")), nil
}

// EnrichManufacturers merges the per-manufacturer detail into each row.
// The listing often lacks the description URLs the export needs. Detail
// errors are logged and the plain row is kept.
func (s *Services) EnrichManufacturers(rows []records.Record) {
	for _, m := range rows {
		id, _ := records.NumberValue(records.Resolve(m, []string{"manufacturers_id", "id"}, nil))
		manufacturerID := int(id)
		if manufacturerID <= 0 {
			continue
		}

		det, err := s.api.Get("manufacturers/"+strconv.Itoa(manufacturerID), nil)
		if err != nil {
			s.log.WithError(err).WithField("manufacturer", manufacturerID).Warn("manufacturer detail unavailable")
			continue
		}
		if data := records.AsRecord(records.Unwrap(det)); data != nil {
			records.DeepMerge(m, data)
		}
	}
}
