// Package payload reads loosely-shaped JSON documents from the marketplace
// API. Documents are decoded with UseNumber so numeric literals survive as
// json.Number.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decode reads one JSON document, keeping numbers as json.Number.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeBytes is Decode over a byte slice. Empty input decodes to nil.
func DecodeBytes(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	return Decode(bytes.NewReader(b))
}

// Object returns v as a JSON object.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// List returns v as a JSON array, or nil.
func List(v any) []any {
	l, _ := v.([]any)
	return l
}

// Unwrap returns obj[key] when v is an object carrying that key, else v.
// It accepts both bare documents and {"data": ...} envelopes.
func Unwrap(v any, key string) any {
	if m, ok := Object(v); ok {
		if inner, ok := m[key]; ok && inner != nil {
			return inner
		}
	}
	return v
}

// Objects returns the JSON objects of a list, skipping anything else.
func Objects(v any) []map[string]any {
	list := List(v)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := Object(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// Truthy mirrors loose truthiness: nil, "", false, zero numbers are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// FirstPresent returns the first non-null value among keys.
func FirstPresent(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// FirstText returns the text of the first truthy value among keys, or "".
func FirstText(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := obj[k]; Truthy(v) {
			return Text(v)
		}
	}
	return ""
}

// Text renders a scalar as display text. Objects and arrays render as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// ID renders an identifier. Numeric values are canonicalized so 4, 4.0 and
// 4e0 all become "4"; strings are only trimmed.
func ID(v any) string {
	switch t := v.(type) {
	case json.Number, float64, int:
		if d, ok := Decimal(t); ok {
			return d.String()
		}
		return Text(t)
	case string:
		return strings.TrimSpace(t)
	default:
		return Text(v)
	}
}

// Decimal coerces v to a number. Strings are trimmed and an empty string is
// zero. It reports false when v is absent or not numeric.
func Decimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, true
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// Int coerces v to an integer, truncating fractions.
func Int(v any) (int, bool) {
	d, ok := Decimal(v)
	if !ok || v == nil {
		return 0, false
	}
	return int(d.IntPart()), true
}
