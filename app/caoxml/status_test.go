package caoxml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bridge_cao/app/records"
)

func TestMapOrderStatusOpenSplitsByPayment(t *testing.T) {
	cases := []struct {
		payment string
		want    string
	}{
		{"paypal", "15"},
		{"paypal3", "15"},
		{"paypalplus", "15"},
		{"paypal_express", "15"},
		{"amazon_pay", "35"},
		{"amazonpay", "35"},
		{"invoice", "20"},
		{"rechnung", "20"},
		{"moneyorder", "25"},
		{"vorkasse", "25"},
		{"prepayment", "25"},
		{"banktransfer", "25"},
		{"something_new", "20"},
		{"", "20"},
	}
	for _, c := range cases {
		order := records.Record{
			"statusId": float64(1),
			"payment":  map[string]interface{}{"code": c.payment},
		}
		assert.Equal(t, c.want, MapOrderStatus(order), "payment %q", c.payment)
	}
}

func TestMapOrderStatusDirectCodes(t *testing.T) {
	cases := map[string]string{
		"163": "5",
		"170": "10",
		"175": "15",
		"999": "20",
		"":    "20",
	}
	for raw, want := range cases {
		order := records.Record{"orders_status": raw}
		assert.Equal(t, want, MapOrderStatus(order), "status %q", raw)
	}
}

func TestMapOrderStatusReadsNestedAndLegacyFields(t *testing.T) {
	v3 := records.Record{
		"status":  map[string]interface{}{"id": float64(175)},
		"payment": map[string]interface{}{"method": "paypal"},
	}
	assert.Equal(t, "15", MapOrderStatus(v3))

	v2 := records.Record{
		"orders_status": float64(1),
		"paymentClass":  "Vorkasse",
	}
	assert.Equal(t, "25", MapOrderStatus(v2))
}

func TestMapOrderStatusPrefersIdOnNestedStatus(t *testing.T) {
	// Status objects carry the code in id; value is display text and
	// must not win.
	order := records.Record{
		"orders_status": map[string]interface{}{
			"id":    float64(163),
			"value": "Sofort schwebend",
		},
	}
	assert.Equal(t, "5", MapOrderStatus(order))

	paid := records.Record{
		"statusId": float64(1),
		"paymentClass": map[string]interface{}{
			"id":   float64(7),
			"name": "PayPal",
		},
	}
	// Nested payment objects also resolve through id first.
	assert.Equal(t, "20", MapOrderStatus(paid))
}

func TestMapOrderStatusTotal(t *testing.T) {
	// No input combination may escape the table.
	weird := []records.Record{
		nil,
		{},
		{"statusId": map[string]interface{}{}},
		{"statusId": []interface{}{}},
		{"orders_status": true},
	}
	for _, o := range weird {
		got := MapOrderStatus(o)
		assert.Contains(t, []string{"5", "10", "15", "20", "25", "35"}, got)
	}
}
