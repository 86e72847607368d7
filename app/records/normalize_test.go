package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDateCanonicalForms(t *testing.T) {
	cases := map[string]string{
		"2024-03-01T10:15:00":       "2024-03-01 10:15:00",
		"2024-03-01T10:15:00Z":      "2024-03-01 10:15:00",
		"2024-03-01T10:15:00+02:00": "2024-03-01 10:15:00",
		"2024-03-01":                "2024-03-01 00:00:00",
		"2024-03-01 10:15:00":       "2024-03-01 10:15:00",
		"":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDate(in), "input %q", in)
	}
}

func TestNormalizeDateEpoch(t *testing.T) {
	want := time.Unix(1700000000, 0).Format("2006-01-02 15:04:05")
	assert.Equal(t, want, NormalizeDate(float64(1700000000)))
	assert.Equal(t, want, NormalizeDate("1700000000"))
}

func TestNormalizeDateIsIdempotent(t *testing.T) {
	inputs := []string{
		"2024-03-01T10:15:00Z",
		"2024-03-01",
		"not a date at all",
		"1700000000",
	}
	for _, in := range inputs {
		once := NormalizeDate(in)
		assert.Equal(t, once, NormalizeDate(once), "input %q", in)
	}
}

func TestNormalizeDateUnparseablePassesThrough(t *testing.T) {
	assert.Equal(t, "sometime soon", NormalizeDate("sometime soon"))
}

func TestFormatNumberTrimsTrailingZeros(t *testing.T) {
	assert.Equal(t, "1.5", FormatNumber(1.5, 4))
	assert.Equal(t, "2", FormatNumber(2, 4))
	assert.Equal(t, "0", FormatNumber(0, 4))
	assert.Equal(t, "19.99", FormatNumber(19.99, 2))
	assert.Equal(t, "-3.25", FormatNumber(-3.25, 4))
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "", NormalizeNumber(nil))
	assert.Equal(t, "", NormalizeNumber(""))
	assert.Equal(t, "0", NormalizeNumber("abc"))
	assert.Equal(t, "1.5", NormalizeNumber("1,5"))
	assert.Equal(t, "100", NormalizeNumber(float64(100)))
}

func TestNormalizeMoneyFixedPlaces(t *testing.T) {
	assert.Equal(t, "", NormalizeMoney(nil))
	assert.Equal(t, "", NormalizeMoney(""))
	assert.Equal(t, "19.9900", NormalizeMoney(19.99))
	assert.Equal(t, "0.0000", NormalizeMoney("junk"))
}

func TestMoneyToFloat(t *testing.T) {
	f, ok := MoneyToFloat("1.234,56 EUR")
	assert.True(t, ok)
	assert.InDelta(t, 1234.56, f, 0.0001)

	f, ok = MoneyToFloat("$1,234.56")
	assert.True(t, ok)
	assert.InDelta(t, 1234.56, f, 0.0001)

	_, ok = MoneyToFloat("EUR")
	assert.False(t, ok)

	_, ok = MoneyToFloat(nil)
	assert.False(t, ok)
}

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "DHL Paket", CleanHTML("  <b>DHL</b> Paket &nbsp; "))
	assert.Equal(t, "Versand & Co", CleanHTML("Versand &amp; Co"))
	assert.Equal(t, "", CleanHTML(nil))
}
