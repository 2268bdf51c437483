package hxbind

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one opaque structured value returned by a Provider. Field names
// and types are an external contract; hxbind only addresses fields by the
// dotted paths templates declare and never validates the schema.
type Record map[string]any

// Field resolves a dotted path against the record, descending into nested
// maps. The second return is false when any path segment is absent, which
// callers treat as a silent no-op per the binding contract.
func (r Record) Field(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if rec, isRec := cur.(Record); isRec {
				m = map[string]any(rec)
			} else {
				return nil, false
			}
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String resolves path and renders the value as display text. Numbers render
// without a trailing ".0"; nil renders empty.
func (r Record) String(path string) (string, bool) {
	v, ok := r.Field(path)
	if !ok {
		return "", false
	}
	return stringify(v), true
}

// Number resolves path as a float64, converting integer and string forms.
func (r Record) Number(path string) (float64, bool) {
	v, ok := r.Field(path)
	if !ok {
		return 0, false
	}
	return toNumber(v)
}

// Bool resolves path as a truthiness test: false, 0, "", nil, and empty
// collections are false; everything else is true.
func (r Record) Bool(path string) bool {
	v, ok := r.Field(path)
	if !ok {
		return false
	}
	return truthy(v)
}

// Items resolves path as a repeating collection, wrapping each element that
// is a map as a Record. Non-collection values yield nil.
func (r Record) Items(path string) []Record {
	v, ok := r.Field(path)
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		if recs, isRecs := v.([]Record); isRecs {
			return recs
		}
		if maps, isMaps := v.([]map[string]any); isMaps {
			out := make([]Record, len(maps))
			for i, m := range maps {
				out[i] = Record(m)
			}
			return out
		}
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		switch t := item.(type) {
		case map[string]any:
			out = append(out, Record(t))
		case Record:
			out = append(out, t)
		default:
			// Scalar collections hydrate through a wrapper field so the
			// sub-template can still address them by path.
			out = append(out, Record{"value": item})
		}
	}
	return out
}

// ID returns the record's identity used for deduplication across pages.
// The "id" field is canonical; "_id" and "uid" are accepted fallbacks.
// Records with no identity never deduplicate ("" compares unequal only by
// not being tracked).
func (r Record) ID() string {
	for _, key := range []string{"id", "_id", "uid"} {
		if s, ok := r.String(key); ok && s != "" {
			return s
		}
	}
	return ""
}

// stringify renders a bound value as display text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toNumber coerces numeric and numeric-string values to float64.
func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// truthy applies the conditional-binding truthiness rules.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if f, ok := toNumber(v); ok {
			return f != 0
		}
		return true
	}
}
