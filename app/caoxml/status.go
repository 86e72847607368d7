package caoxml

import (
	"strings"

	"bridge_cao/app/records"
)

// MapOrderStatus derives the legacy order status code from the shop
// status id and the payment method. Open orders (status 1) split by how
// they were paid; the instant-payment statuses map directly. Anything
// unknown lands on "registered" (20) so the import never drops an order.
func MapOrderStatus(order records.Record) string {
	// A nested status object identifies itself by id, not by a display
	// value, so the probe order differs from the generic one.
	statusRaw := records.Stringify(records.ScalarProbe(records.Resolve(order, []string{
		"orders_status", "statusId", "status.id",
	}, nil), "id", "code", "name", "title", "value"))
	payment := strings.ToLower(records.Stringify(records.ScalarProbe(records.Resolve(order, []string{
		"payment.code", "paymentClass", "paymentType", "payment.method",
	}, nil), "id", "code", "name", "title", "value")))

	switch statusRaw {
	case "1":
		switch payment {
		case "paypal3", "paypal", "paypalplus", "paypal_express":
			return "15"
		case "amazon_pay", "amazonpay":
			return "35"
		case "invoice", "rechnung":
			return "20"
		case "moneyorder", "vorkasse", "prepayment", "banktransfer":
			return "25"
		default:
			return "20"
		}
	case "163":
		return "5"
	case "170":
		return "10"
	case "175":
		return "15"
	default:
		return "20"
	}
}
