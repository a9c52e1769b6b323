package grading

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Numeric values are compared as float64 after normalization, so 2 and 2.0
// are equal. The tolerance absorbs float round-off introduced by different
// language runtimes printing the same value.
const numericTolerance = 1e-9

// Equal performs recursive structural comparison of two decoded values.
// Sequences must match element-wise in order and length; mappings must have
// equal key sets with equal values regardless of key order; primitives
// compare by value.
func Equal(expected, actual any) bool {
	expected = normalize(expected)
	actual = normalize(actual)

	switch e := expected.(type) {
	case nil:
		return actual == nil
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if !Equal(e[i], a[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for key, value := range e {
			other, present := a[key]
			if !present || !Equal(value, other) {
				return false
			}
		}
		return true
	case float64:
		a, ok := actual.(float64)
		if !ok {
			return false
		}
		return numericEqual(e, a)
	default:
		return expected == actual
	}
}

func numericEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	if diff <= numericTolerance {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	return diff <= largest*numericTolerance
}

// normalize collapses the numeric types produced by the various decode paths
// into float64 so the comparator sees one canonical representation.
func normalize(value any) any {
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return value
	}
}

// ParseOutput turns the raw text a program printed into a structured value.
// It attempts a JSON decode of the trimmed output first and falls back to the
// raw trimmed string when the output is not valid JSON.
func ParseOutput(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return trimmed
	}
	if decoder.More() {
		return trimmed
	}
	return value
}
