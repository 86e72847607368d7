package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWalksNestedPaths(t *testing.T) {
	rec := Record{
		"customer": map[string]interface{}{
			"address": map[string]interface{}{
				"city": "Berlin",
			},
		},
		"id": float64(7),
	}

	assert.Equal(t, "Berlin", Get(rec, "customer.address.city"))
	assert.Equal(t, float64(7), Get(rec, "id"))
	assert.Nil(t, Get(rec, "customer.address.zip"))
	assert.Nil(t, Get(rec, "customer.name.first"))
	assert.Nil(t, Get(nil, "id"))
}

func TestResolveFirstNonEmptyWins(t *testing.T) {
	rec := Record{
		"statusId":     "",
		"orders_status": float64(15),
		"status":       map[string]interface{}{"id": float64(99)},
	}

	got := Resolve(rec, []string{"statusId", "orders_status", "status.id"}, nil)
	assert.Equal(t, float64(15), got)
}

func TestResolveDefaultWhenAllMissing(t *testing.T) {
	rec := Record{"currency": nil}
	got := Resolve(rec, []string{"currency", "currency_code"}, "EUR")
	assert.Equal(t, "EUR", got)
}

func TestResolveAnyKeepsExplicitEmptyString(t *testing.T) {
	rec := Record{"quantity": "", "products_quantity": float64(4)}

	assert.Equal(t, "", ResolveAny(rec, []string{"quantity", "products_quantity"}, 0))
	assert.Equal(t, 0, ResolveAny(rec, []string{"missing"}, 0))
}

func TestScalarProbesWellKnownKeys(t *testing.T) {
	assert.Equal(t, "PayPal", Scalar(map[string]interface{}{"title": "PayPal", "junk": Record{}}))
	assert.Equal(t, float64(3), Scalar(map[string]interface{}{"id": float64(3)}))
	assert.Equal(t, "plain", Scalar("plain"))
	assert.Equal(t, "", Scalar(map[string]interface{}{"nested": map[string]interface{}{}}))
}

func TestScalarProbeCustomKeyOrder(t *testing.T) {
	status := map[string]interface{}{"id": float64(163), "value": "Sofort schwebend"}

	assert.Equal(t, "Sofort schwebend", Scalar(status))
	assert.Equal(t, float64(163), ScalarProbe(status, "id", "code", "name", "title", "value"))
}

func TestScalarStringRendering(t *testing.T) {
	assert.Equal(t, "", ScalarString(nil))
	assert.Equal(t, "12", ScalarString(float64(12)))
	assert.Equal(t, "12.5", ScalarString(float64(12.5)))
	assert.Equal(t, "1", ScalarString(true))
	assert.Equal(t, "", ScalarString(false))
}

func TestDeepMergeSourceWinsRecursively(t *testing.T) {
	dst := Record{
		"id": float64(1),
		"address": map[string]interface{}{
			"city":   "Hamburg",
			"street": "Alt 1",
		},
	}
	src := Record{
		"address": map[string]interface{}{
			"city": "Bremen",
		},
		"email": "a@b.de",
	}

	DeepMerge(dst, src)

	assert.Equal(t, "a@b.de", dst["email"])
	addr := dst["address"].(map[string]interface{})
	assert.Equal(t, "Bremen", addr["city"])
	assert.Equal(t, "Alt 1", addr["street"])
}

func TestExtractListShapes(t *testing.T) {
	naked := []interface{}{Record{"id": float64(1)}}
	assert.Len(t, ExtractList(naked, "orders"), 1)

	keyed := map[string]interface{}{"orders": []interface{}{Record{}, Record{}}}
	assert.Len(t, ExtractList(keyed, "orders"), 2)

	generic := map[string]interface{}{"items": []interface{}{Record{}}}
	assert.Len(t, ExtractList(generic, "orders"), 1)

	assert.Empty(t, ExtractList(map[string]interface{}{"total": float64(0)}, "orders"))
	assert.Empty(t, ExtractList(nil, "orders"))
}

func TestUnwrapDataEnvelope(t *testing.T) {
	inner := []interface{}{Record{"id": float64(1)}}
	wrapped := map[string]interface{}{"data": inner}

	require.Equal(t, inner, Unwrap(wrapped))
	assert.Equal(t, inner, Unwrap(inner))
}
