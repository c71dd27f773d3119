package payload

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsNumberLiterals(t *testing.T) {
	v, err := Decode(strings.NewReader(`{"id": 12, "price": "10.50"}`))
	require.NoError(t, err)

	obj, ok := Object(v)
	require.True(t, ok)
	assert.Equal(t, json.Number("12"), obj["id"])
	assert.Equal(t, "12", Text(obj["id"]))
}

func TestDecodeBytes_Empty(t *testing.T) {
	v, err := DecodeBytes([]byte("  "))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestUnwrap(t *testing.T) {
	list := []any{"a"}
	assert.Equal(t, list, Unwrap(map[string]any{"data": list}, "data"))
	assert.Equal(t, list, Unwrap(list, "data"))

	bare := map[string]any{"id": "1"}
	assert.Equal(t, bare, Unwrap(bare, "data"))
}

func TestObjects_SkipsNonObjects(t *testing.T) {
	got := Objects([]any{map[string]any{"id": "1"}, "junk", nil, 4.0, map[string]any{"id": "2"}})
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[1]["id"])
	assert.Empty(t, Objects("not a list"))
}

func TestFirstText(t *testing.T) {
	obj := map[string]any{"nombre": "", "name": "Mug", "zero": json.Number("0")}
	assert.Equal(t, "Mug", FirstText(obj, "nombre", "name"))
	assert.Equal(t, "", FirstText(obj, "zero", "missing"))
}

func TestFirstPresent(t *testing.T) {
	obj := map[string]any{"precio": nil, "price": ""}
	v, ok := FirstPresent(obj, "precio", "price")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = FirstPresent(obj, "missing")
	assert.False(t, ok)
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  string
		valid bool
	}{
		{"json number", json.Number("12.5"), "12.5", true},
		{"float", 3.25, "3.25", true},
		{"trimmed string", "  7.10 ", "7.1", true},
		{"empty string", "", "0", true},
		{"junk string", "abc", "0", false},
		{"nil", nil, "0", false},
		{"bool", true, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Decimal(tt.in)
			assert.Equal(t, tt.valid, ok)
			if ok {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{json.Number("4"), "4"},
		{json.Number("4.0"), "4"},
		{json.Number("4e0"), "4"},
		{json.Number("12.50"), "12.5"},
		{4.0, "4"},
		{7, "7"},
		{" a1 ", "a1"},
		{"4.0", "4.0"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ID(tt.in), "%#v", tt.in)
	}
}

func TestInt(t *testing.T) {
	n, ok := Int(json.Number("3"))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Int(nil)
	assert.False(t, ok)
}
