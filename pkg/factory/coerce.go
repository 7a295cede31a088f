package factory

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Values arrive exactly as decoded from JSON: nil, bool, string,
// json.Number, float64 or one of the integer kinds. The helpers below turn
// them into the Go types the entities need. The boolean result reports
// whether a usable value was present.

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		return parseInt(string(n))
	case string:
		return parseInt(strings.TrimSpace(n))
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt64(f)
}

// int64Bound is 2^63, the first float64 past the int64 range.
const int64Bound = 1 << 63

// floatToInt64 truncates f, refusing NaN, infinities and anything outside
// the int64 range rather than letting the conversion wrap.
func floatToInt64(f float64) (int64, bool) {
	if !(f >= -int64Bound && f < int64Bound) {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// toCount coerces a counter. Missing values and negatives become zero.
func toCount(v any) int64 {
	n, ok := toInt64(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return false, false
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	if n, ok := toInt64(v); ok {
		return n != 0, true
	}
	return false, false
}

// toString returns v when it is a non-empty string
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case json.Number:
		return string(s), true
	}
	return "", false
}

// toOptionalString keeps empty strings: upstream uses "" for a known but
// empty biography or website, null for an absent one.
func toOptionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// truthy mirrors the upstream habit of sending 0, "0", "" or null for a
// missing coordinate.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "0" {
			return false
		}
		f, err := strconv.ParseFloat(s, 64)
		return err != nil || f != 0
	}
	f, ok := toFloat(v)
	return ok && f != 0
}
