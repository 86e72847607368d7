package caoxml

import (
	"sort"
	"strings"

	"bridge_cao/app/records"
)

// Lang identifies the shop language a description block is written in.
// ID and Name follow the fixed numbering the legacy import ships with.
type Lang struct {
	ID   string
	Code string
	Name string
}

var langDefaults = map[string]Lang{
	"de": {ID: "2", Code: "de", Name: "Deutsch"},
	"en": {ID: "1", Code: "en", Name: "English"},
}

// DefaultLang returns the well-known Lang for a code, or a Lang carrying
// only the code when it is not one of the knowns.
func DefaultLang(code string) Lang {
	code = strings.ToLower(code)
	if l, ok := langDefaults[code]; ok {
		return l
	}
	return Lang{Code: code}
}

// PickLang selects the translation for code out of a per-language map.
// Plain scalars pass through, a miss falls back to the first entry in
// key order so output stays deterministic.
func PickLang(v interface{}, code string) string {
	m := records.AsRecord(v)
	if m == nil {
		return records.ScalarString(v)
	}
	if t, ok := m[code]; ok {
		return records.ScalarString(t)
	}
	if t, ok := m[strings.ToUpper(code)]; ok {
		return records.ScalarString(t)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := records.ScalarString(m[k]); s != "" {
			return s
		}
	}
	return ""
}
