package records

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateTimeLayout = "2006-01-02 15:04:05"

var (
	tzSuffixRe  = regexp.MustCompile(`\s*(Z|[+-]\d{2}:\d{2})$`)
	bareDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	fullDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	moneyJunkRe = regexp.MustCompile(`[^\d,.\-]`)
	commaCentsRe = regexp.MustCompile(`,\d{2}$`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
)

// fallbackLayouts are tried when a date string is in none of the known
// canonical shapes. Mirrors the lenient parsing of the legacy exporter.
var fallbackLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	time.RFC1123,
	time.RFC1123Z,
	time.ANSIC,
}

// Stringify renders a scalar value the way the legacy exporter casts to
// string: nil is empty, numbers print without exponent, true is "1" and
// false is empty.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// NumberValue coerces v to a float. Nested values are reduced with
// Scalar first, decimal commas are tolerated. ok is false when nothing
// numeric is left.
func NumberValue(v interface{}) (float64, bool) {
	v = Scalar(v)
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FormatNumber formats f with the given number of decimal places, then
// strips trailing zeros and a trailing decimal point. FormatNumber(1.5, 4)
// is "1.5", FormatNumber(2, 2) is "2".
func FormatNumber(f float64, places int) string {
	s := decimal.NewFromFloat(f).StringFixed(int32(places))
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// NormalizeNumber renders v as a trimmed 4-decimal number string.
// Empty input stays empty, non-numeric input collapses to "0".
func NormalizeNumber(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok && s == "" {
		return ""
	}
	f, ok := NumberValue(v)
	if !ok {
		f = 0
	}
	return FormatNumber(f, 4)
}

// NormalizeMoney renders v with exactly four decimal places, the format
// the primary price fields use. Empty input stays empty.
func NormalizeMoney(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok && s == "" {
		return ""
	}
	f, ok := NumberValue(v)
	if !ok {
		f = 0
	}
	return decimal.NewFromFloat(f).StringFixed(4)
}

// MoneyToFloat parses a display-formatted money string such as
// "1.234,56 EUR" or "$1,234.56". A two-digit fraction after a comma
// marks the comma as the decimal separator.
func MoneyToFloat(v interface{}) (float64, bool) {
	v = Scalar(v)
	if v == nil {
		return 0, false
	}
	s := Stringify(v)
	s = moneyJunkRe.ReplaceAllString(s, "")
	if commaCentsRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// NormalizeDate canonicalizes v to "YYYY-MM-DD HH:MM:SS".
// Epoch seconds are rendered as local time, ISO strings lose the T
// separator and any timezone suffix, bare dates gain a midnight time.
// Unparseable strings pass through after those transformations; empty
// input yields "". The function never fails and is idempotent.
func NormalizeDate(v interface{}) string {
	if v == nil {
		return ""
	}
	v = Scalar(v)

	switch t := v.(type) {
	case float64:
		if t > 0 && t == float64(int64(t)) {
			return time.Unix(int64(t), 0).Format(dateTimeLayout)
		}
	case int:
		if t > 0 {
			return time.Unix(int64(t), 0).Format(dateTimeLayout)
		}
	case int64:
		if t > 0 {
			return time.Unix(t, 0).Format(dateTimeLayout)
		}
	}

	s := Stringify(v)
	if s == "" {
		return ""
	}
	if digitsOnlyRe.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			return time.Unix(n, 0).Format(dateTimeLayout)
		}
	}

	s = strings.ReplaceAll(s, "T", " ")
	s = tzSuffixRe.ReplaceAllString(s, "")

	if bareDateRe.MatchString(s) {
		return s + " 00:00:00"
	}
	if fullDateRe.MatchString(s) {
		return s
	}
	for _, layout := range fallbackLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format(dateTimeLayout)
		}
	}
	return s
}

// CleanHTML decodes HTML entities and strips tags, the treatment the
// shipping method title gets before export.
func CleanHTML(v interface{}) string {
	s := ScalarString(v)
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
