package engine

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/roach88/tally/internal/ir"
)

// Field accessors over the loosely decoded tree. Each reports false when
// the value is absent or has the wrong shape; none of them panics.

func objectAt(obj map[string]any, key string) map[string]any {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]any)
	return m
}

// wrongShape reports whether key is present and non-null in obj but did
// not decode as the expected container (decoded is false).
func wrongShape(obj map[string]any, key string, decoded bool) bool {
	v, present := obj[key]
	return present && v != nil && !decoded
}

func intOf(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := ir.IntFromNumber(n)
	return i, err == nil
}

func nonNegativeInt(v any) (int64, bool) {
	i, ok := intOf(v)
	return i, ok && i >= 0
}

// idFromKey parses an object key as an id. Only the canonical decimal
// form is accepted, so "007" and "+7" are malformed.
func idFromKey(key string) (int64, bool) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != key {
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
