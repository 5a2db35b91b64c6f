// Package settings models the server-held configuration map edited one key at
// a time.
package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Values is the flat settings object returned by the backend.
type Values map[string]any

// Kind is the editing behaviour derived from a value's JSON type.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "text"
	}
}

// KindOf classifies a decoded value.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int32, int64, float32, float64, json.Number:
		return KindNumber
	default:
		return KindText
	}
}

// Normalize converts json.Number and integral floats to int64 so that
// numeric settings compare and render as integers.
func Normalize(in Values) Values {
	out := make(Values, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	return v
}

// Keys returns the setting names in display order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of v with key set to value. Other keys are untouched.
func Merge(v Values, key string, value any) Values {
	out := make(Values, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[key] = value
	return out
}

// ParseInt parses a numeric text input. Unparseable input becomes 0.
func ParseInt(input string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseFloat parses a fractional text input. Unparseable input becomes 0.
func ParseFloat(input string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseBool accepts the usual spellings of a toggle.
func ParseBool(input string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "true", "yes", "on", "1", "y":
		return true, true
	case "false", "no", "off", "0", "n":
		return false, true
	}
	return false, false
}

// Coerce turns text typed by the operator into a value of the same kind as
// current. A float64 current parses as a float, other numbers as integers,
// and bad numeric input becomes 0. Unrecognised booleans keep current.
func Coerce(current any, input string) any {
	switch KindOf(current) {
	case KindNumber:
		switch current.(type) {
		case float32, float64:
			return ParseFloat(input)
		}
		return ParseInt(input)
	case KindBool:
		if b, ok := ParseBool(input); ok {
			return b
		}
		return current
	default:
		return input
	}
}

// Format renders a value for display and for the edit buffer.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "on"
		}
		return "off"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Edit records one optimistic change so it can be rolled back.
type Edit struct {
	Key      string
	Value    any
	Prior    any
	HadPrior bool
}

// Begin applies value optimistically and captures the prior value.
func Begin(v Values, key string, value any) (Values, Edit) {
	prior, ok := v[key]
	return Merge(v, key, value), Edit{Key: key, Value: value, Prior: prior, HadPrior: ok}
}

// Revert restores the value captured by Begin.
func (e Edit) Revert(v Values) Values {
	if !e.HadPrior {
		out := make(Values, len(v))
		for k, val := range v {
			if k != e.Key {
				out[k] = val
			}
		}
		return out
	}
	return Merge(v, e.Key, e.Prior)
}
