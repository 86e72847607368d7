package caoxml

import (
	"github.com/beevik/etree"

	"bridge_cao/app/records"
)

// BuildCustomers assembles the <CUSTOMERS> export document. Rows are
// expected in the normalized flat shape the customer service produces.
func BuildCustomers(rows []records.Record) *etree.Document {
	doc, root := NewDocument("CUSTOMERS")
	for _, r := range rows {
		AppendCustomer(root, r)
	}
	return doc
}

// AppendCustomer maps one normalized customer row onto a
// <CUSTOMERS_DATA> block.
func AppendCustomer(root *etree.Element, row records.Record) *etree.Element {
	x := root.CreateElement("CUSTOMERS_DATA")

	addChild(x, "CUSTOMERS_ID", records.ScalarString(row["customers_id"]))
	addChild(x, "CUSTOMERS_CID", records.ScalarString(row["customers_cid"]))
	// The legacy import only knows a single customer group.
	addChild(x, "CUSTOMER_GROUP", "1")

	addChild(x, "GENDER", records.ScalarString(row["customers_gender"]))
	addChild(x, "COMPANY", records.ScalarString(row["entry_company"]))
	addChild(x, "FIRSTNAME", records.ScalarString(row["entry_firstname"]))
	addChild(x, "LASTNAME", records.ScalarString(row["entry_lastname"]))
	addChild(x, "STREET", records.ScalarString(row["entry_street_address"]))
	addChild(x, "POSTCODE", records.ScalarString(row["entry_postcode"]))
	addChild(x, "CITY", records.ScalarString(row["entry_city"]))
	addChild(x, "SUBURB", records.ScalarString(row["entry_suburb"]))
	addChild(x, "STATE", records.ScalarString(row["entry_state"]))
	addChild(x, "COUNTRY", records.ScalarString(row["countries_iso_code_2"]))

	addChild(x, "TELEPHONE", records.ScalarString(row["customers_telephone"]))
	addChild(x, "FAX", records.ScalarString(row["customers_fax"]))
	addChild(x, "EMAIL", records.ScalarString(row["customers_email_address"]))

	addChild(x, "BIRTHDAY", records.NormalizeDate(row["customers_dob"]))
	addChild(x, "VAT_ID", records.ScalarString(row["vat_id"]))
	addChild(x, "DATE_ACCOUNT_CREATED", records.NormalizeDate(row["customers_info_date_account_created"]))

	return x
}
