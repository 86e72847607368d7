/*
Package records provides tolerant access to the loosely shaped JSON
records the Gambio API returns. The same concept can live at different
paths and in different shapes depending on the API generation, so every
mapper reads fields through Resolve with an ordered candidate path list
instead of branching on the source version.
*/
package records

import (
	"sort"
	"strings"
)

// Record is a decoded JSON object.
type Record = map[string]interface{}

// scalarProbeKeys are the nested keys tried, in order, when a scalar is
// required but a nested object was found.
var scalarProbeKeys = []string{"value", "name", "title", "code", "id", "module"}

// Get walks a dot-separated path through nested records.
// It returns nil as soon as a segment is missing.
func Get(rec Record, path string) interface{} {
	var cur interface{} = rec
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// Resolve evaluates the candidate paths in order and returns the first
// value that is neither nil nor an empty string. If none match, it
// returns def.
func Resolve(rec Record, paths []string, def interface{}) interface{} {
	for _, p := range paths {
		v := Get(rec, p)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return def
}

// ResolveAny is Resolve with null-coalescing semantics: an explicit
// empty string counts as present and is returned as-is.
func ResolveAny(rec Record, paths []string, def interface{}) interface{} {
	for _, p := range paths {
		if v := Get(rec, p); v != nil {
			return v
		}
	}
	return def
}

// Scalar reduces a possibly nested value to a scalar. Non-container
// values pass through unchanged. For objects the probe keys are tried
// in order, then the first scalar member found; otherwise "".
func Scalar(v interface{}) interface{} {
	return ScalarProbe(v, scalarProbeKeys...)
}

// ScalarProbe is Scalar with a caller-supplied probe key order, for
// fields whose identifying member is not the generic one.
func ScalarProbe(v interface{}, probe ...string) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		if list, ok := v.([]interface{}); ok {
			for _, item := range list {
				if !isContainer(item) {
					return item
				}
			}
			return ""
		}
		return v
	}
	for _, k := range probe {
		if inner, ok := m[k]; ok && !isContainer(inner) {
			return inner
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !isContainer(m[k]) {
			return m[k]
		}
	}
	return ""
}

// ScalarString is Scalar rendered as a string. nil becomes "".
func ScalarString(v interface{}) string {
	return Stringify(Scalar(v))
}

func isContainer(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return true
	}
	return false
}

// AsRecord returns v as a Record, or nil when it is not an object.
func AsRecord(v interface{}) Record {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}

// AsList returns v as a slice, or nil when it is not one.
func AsList(v interface{}) []interface{} {
	if l, ok := v.([]interface{}); ok {
		return l
	}
	return nil
}

// DeepMerge merges src into dst, preferring src on key collisions.
// Nested objects are merged recursively; everything else is replaced.
// dst is modified in place and returned.
func DeepMerge(dst, src Record) Record {
	if dst == nil {
		dst = Record{}
	}
	for k, sv := range src {
		if sm, ok := sv.(map[string]interface{}); ok {
			if dm, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = DeepMerge(dm, sm)
				continue
			}
		}
		dst[k] = sv
	}
	return dst
}

// ExtractList pulls the record list out of an API response. v2 endpoints
// may return a naked array, v3 wraps it under "data", some builds use an
// entity-named key. The preferred keys are tried first, then the naked
// array, then a few common fallbacks.
func ExtractList(res interface{}, keys ...string) []interface{} {
	if list, ok := res.([]interface{}); ok {
		return list
	}
	m, ok := res.(map[string]interface{})
	if !ok {
		return nil
	}
	for _, k := range keys {
		if list, ok := m[k].([]interface{}); ok {
			return list
		}
	}
	for _, k := range []string{"items", "rows", "result"} {
		if list, ok := m[k].([]interface{}); ok {
			return list
		}
	}
	return nil
}

// Unwrap drops the "data" envelope some endpoints put around a single
// object and returns the inner record, or the input itself.
func Unwrap(res interface{}) interface{} {
	if m, ok := res.(map[string]interface{}); ok {
		if inner, ok := m["data"]; ok {
			return inner
		}
	}
	return res
}
