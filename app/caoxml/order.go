package caoxml

import (
	"strings"

	"github.com/beevik/etree"

	"bridge_cao/app/records"
)

// BuildOrders assembles the <ORDER> export document, one <ORDER_INFO>
// block per order.
func BuildOrders(orders []records.Record) *etree.Document {
	doc, root := NewDocument("ORDER")
	for _, o := range orders {
		AppendOrder(root, o)
	}
	return doc
}

// AppendOrder maps one order record onto an <ORDER_INFO> block under
// root. The record may carry either API generation's field names; every
// field is read through an ordered candidate list.
func AppendOrder(root *etree.Element, order records.Record) *etree.Element {
	d := order
	if data := records.AsRecord(order["data"]); data != nil {
		d = data
	}

	ox := root.CreateElement("ORDER_INFO")

	h := ox.CreateElement("ORDER_HEADER")
	addChild(h, "ORDER_ID", pickStr(d, "id", "orders_id"))
	addChild(h, "CUSTOMER_ID", pickStr(d, "customer.id", "customers_id"))
	addChild(h, "CUSTOMER_CID", pickStr(d, "customer.customerNumber", "customers_cid"))
	addChild(h, "CUSTOMER_GROUP", pickStr(d, "customer.statusId", "customers_status"))
	addChild(h, "ORDER_DATE", records.NormalizeDate(records.Resolve(d, []string{
		"date_purchased", "datePurchased", "purchaseDate", "createdAt",
	}, nil)))
	addChild(h, "ORDER_CURRENCY", records.ScalarString(records.Resolve(d, []string{"currency"}, "EUR")))
	addChild(h, "ORDER_CURRENCY_VALUE", records.ScalarString(records.Resolve(d, []string{"currency_value", "currencyValue"}, "1")))
	addChild(h, "ORDER_STATUS", MapOrderStatus(d))
	addChild(h, "ORDER_IP", pickStr(d, "customer.ip", "customers_ip"))

	bill := records.AsRecord(records.Resolve(d, []string{"billingAddress", "billing"}, nil))
	bx := ox.CreateElement("BILLING_ADDRESS")
	addChild(bx, "VAT_ID", pickStr(d, "customer.vatId", "customers_vat_id"))
	addChild(bx, "COMPANY", records.ScalarString(bill["company"]))
	addChild(bx, "NAME", fullName(bill))
	addChild(bx, "FIRSTNAME", records.ScalarString(bill["firstName"]))
	addChild(bx, "LASTNAME", records.ScalarString(bill["lastName"]))
	addChild(bx, "STREET", streetLine(bill))
	addChild(bx, "POSTCODE", records.ScalarString(bill["postcode"]))
	addChild(bx, "CITY", records.ScalarString(bill["city"]))
	addChild(bx, "SUBURB", records.ScalarString(bill["suburb"]))
	addChild(bx, "STATE", records.ScalarString(bill["state"]))
	addChild(bx, "COUNTRY", countryCode(bill))
	addChild(bx, "TELEPHONE", pickStr(d, "customer.telephone", "customers_telephone"))
	addChild(bx, "EMAIL", pickStr(d, "customer.email", "customers_email_address"))
	addChild(bx, "BIRTHDAY", pickStr(d, "customer.dateOfBirth"))
	addChild(bx, "GENDER", pickStr(d, "customer.gender"))

	ship := records.AsRecord(records.Resolve(d, []string{"deliveryAddress", "shipping"}, nil))
	sx := ox.CreateElement("DELIVERY_ADDRESS")
	addChild(sx, "COMPANY", records.ScalarString(ship["company"]))
	addChild(sx, "NAME", fullName(ship))
	addChild(sx, "FIRSTNAME", records.ScalarString(ship["firstName"]))
	addChild(sx, "LASTNAME", records.ScalarString(ship["lastName"]))
	addChild(sx, "STREET", streetLine(ship))
	addChild(sx, "POSTCODE", records.ScalarString(ship["postcode"]))
	addChild(sx, "CITY", records.ScalarString(ship["city"]))
	addChild(sx, "SUBURB", records.ScalarString(ship["suburb"]))
	addChild(sx, "STATE", records.ScalarString(ship["state"]))
	addChild(sx, "COUNTRY", countryCode(ship))

	px := ox.CreateElement("PAYMENT")
	addChild(px, "PAYMENT_METHOD", pickStr(d,
		"payment_method", "paymentType.title", "payment.title", "paymentType",
		"paymentType.name", "paymentTypeTitle", "paymentTypeName"))
	addChild(px, "PAYMENT_CLASS", pickStr(d,
		"payment_class", "paymentType.module", "payment.code", "paymentClass"))
	addChild(px, "PAYMENT_BANKTRANS_BNAME", "")
	addChild(px, "PAYMENT_BANKTRANS_BLZ", "")
	addChild(px, "PAYMENT_BANKTRANS_NUMBER", "")
	addChild(px, "PAYMENT_BANKTRANS_OWNER", "")
	addChild(px, "PAYMENT_BANKTRANS_STATUS", "")

	shx := ox.CreateElement("SHIPPING")
	addChild(shx, "SHIPPING_METHOD", records.CleanHTML(records.Resolve(d, []string{
		"shipping_method", "shippingType.title", "shipping.title",
	}, nil)))
	addChild(shx, "SHIPPING_CLASS", pickStr(d, "shipping_class", "shippingType.module", "shipping.code"))

	itemsNode := ox.CreateElement("ORDER_PRODUCTS")
	for _, raw := range records.AsList(d["items"]) {
		it := records.AsRecord(raw)
		if it == nil {
			continue
		}
		appendOrderItem(itemsNode, it)
	}

	appendOrderTotals(ox, d)

	if c := pickStr(d, "comments", "comment"); c != "" {
		addChild(ox, "ORDER_COMMENTS", c)
	}

	return ox
}

func appendOrderItem(parent *etree.Element, it records.Record) {
	x := parent.CreateElement("PRODUCT")

	addChild(x, "PRODUCTS_ID", pickStr(it, "id", "products_id"))

	qty, ok := records.NumberValue(records.Resolve(it, []string{
		"quantity.value", "products_quantity", "quantity",
	}, 1))
	if !ok {
		qty = 0
	}
	addChild(x, "PRODUCTS_QUANTITY", records.FormatNumber(qty, 4))
	addChild(x, "PRODUCTS_MODEL", pickStr(it, "products_model", "model"))
	addChild(x, "PRODUCTS_NAME", pickStr(it, "products_name", "name"))

	// final_price is the gross line total; divide by quantity to get
	// the unit price the legacy format carries.
	final, ok := records.NumberValue(records.Resolve(it, []string{
		"final_price", "price.value", "finalPrice",
	}, 0.0))
	if !ok {
		final = 0
	}
	unit := final
	if qty > 0 {
		unit = final / qty
	}
	addChild(x, "PRODUCTS_PRICE", records.FormatNumber(unit, 2))

	tax, ok := records.NumberValue(records.Resolve(it, []string{"products_tax", "tax.rate"}, 0.0))
	if !ok {
		tax = 0
	}
	addChild(x, "PRODUCTS_TAX", records.FormatNumber(tax, 2))

	allow := records.Resolve(it, []string{"allow_tax"}, nil)
	flag := records.ScalarString(allow)
	if allow == nil {
		if tax > 0 {
			flag = "1"
		} else {
			flag = "0"
		}
	}
	addChild(x, "PRODUCTS_TAX_FLAG", flag)
}

func appendOrderTotals(ox *etree.Element, d records.Record) {
	totals := records.AsRecord(d["totals"])
	node := ox.CreateElement("ORDER_TOTAL")

	subtotal, subOK := records.NumberValue(totals["subtotal"])
	shipping, shipOK := records.NumberValue(totals["shippingTotal"])
	taxTotal, taxOK := records.NumberValue(totals["taxTotal"])
	grand, grandOK := records.NumberValue(totals["grandTotal"])
	if !grandOK {
		// The display string like "123,45 EUR" is the only total some
		// list payloads carry.
		if f, ok := records.MoneyToFloat(records.Resolve(d, []string{"totalSum"}, nil)); ok {
			grand, grandOK = f, true
		}
	}

	rows := []struct {
		title string
		value float64
		ok    bool
		class string
		sort  string
	}{
		{"Zwischensumme:", subtotal, subOK, "ot_subtotal", "10"},
		{"Versandkosten:", shipping, shipOK, "ot_shipping", "20"},
		{"MwSt.:", taxTotal, taxOK, "ot_tax", "30"},
		{"Gesamtsumme:", grand, grandOK, "ot_total", "99"},
	}
	for _, r := range rows {
		if !r.ok {
			continue
		}
		tx := node.CreateElement("TOTAL")
		addChild(tx, "TOTAL_TITLE", r.title)
		addChild(tx, "TOTAL_VALUE", records.FormatNumber(r.value, 2))
		addChild(tx, "TOTAL_CLASS", r.class)
		addChild(tx, "TOTAL_SORT_ORDER", r.sort)
		addChild(tx, "TOTAL_PREFIX", "")
		addChild(tx, "TOTAL_TAX", "")
	}
}

func pickStr(rec records.Record, paths ...string) string {
	return records.ScalarString(records.Resolve(rec, paths, nil))
}

func fullName(addr records.Record) string {
	first := records.ScalarString(addr["firstName"])
	last := records.ScalarString(addr["lastName"])
	return strings.TrimSpace(first + " " + last)
}

func streetLine(addr records.Record) string {
	street := records.ScalarString(addr["street"])
	hnr := records.ScalarString(addr["houseNumber"])
	return strings.TrimSpace(street + " " + hnr)
}

func countryCode(addr records.Record) string {
	iso2 := records.ScalarString(records.Resolve(addr, []string{"countryIsoCode2", "countryIsoCode"}, nil))
	if iso2 != "" {
		return iso2
	}
	return records.ScalarString(addr["country"])
}
