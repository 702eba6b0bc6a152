package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		kind  Kind
		items []any
	}{
		{"nil", nil, Absent, nil},
		{"empty string", "  ", Absent, nil},
		{"json null", "null", Absent, nil},
		{"native array", []any{"a", "b"}, OK, []any{"a", "b"}},
		{"string slice", []string{"a"}, OK, []any{"a"}},
		{"json array", `["a","b"]`, OK, []any{"a", "b"}},
		{"json empty array", `[]`, OK, []any{}},
		{"invalid json", `["a",`, ParseError, nil},
		{"trailing garbage", `["a"] x`, ParseError, nil},
		{"json object", `{"a":1}`, TypeError, nil},
		{"plain word", `hello`, ParseError, nil},
		{"number", 42, TypeError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NormalizeList(tt.raw)
			assert.Equal(t, tt.kind, res.Kind)
			if tt.kind == OK {
				assert.Equal(t, tt.items, res.Items)
			}
		})
	}
}

func TestNormalizeStringList(t *testing.T) {
	res := NormalizeStringList(`[" go ", "sql"]`)
	assert.Equal(t, OK, res.Kind)
	assert.Equal(t, []string{"go", "sql"}, res.Items)

	res = NormalizeStringList([]any{"go", 3})
	assert.Equal(t, TypeError, res.Kind)
	assert.Equal(t, 1, res.BadIndex)

	res = NormalizeStringList("{")
	assert.Equal(t, ParseError, res.Kind)
	assert.Equal(t, -1, res.BadIndex)

	res = NormalizeStringList(nil)
	assert.Equal(t, Absent, res.Kind)
}

func TestNormalizeBool(t *testing.T) {
	tests := []struct {
		raw   any
		kind  Kind
		value bool
	}{
		{true, OK, true},
		{false, OK, false},
		{"true", OK, true},
		{"TRUE", OK, true},
		{"False", OK, false},
		{"", Absent, false},
		{nil, Absent, false},
		{"yes", TypeError, false},
		{1, TypeError, false},
	}

	for _, tt := range tests {
		res := NormalizeBool(tt.raw)
		assert.Equal(t, tt.kind, res.Kind, "%v", tt.raw)
		assert.Equal(t, tt.value, res.Value, "%v", tt.raw)
	}
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, StringResult{Kind: OK, Value: "Ana"}, NormalizeString("  Ana "))
	assert.Equal(t, StringResult{Kind: OK, Value: "612345678"}, NormalizeString(json.Number("612345678")))
	assert.Equal(t, StringResult{Kind: OK, Value: "28001"}, NormalizeString(float64(28001)))
	assert.Equal(t, StringResult{Kind: Absent}, NormalizeString(nil))
	assert.Equal(t, TypeError, NormalizeString([]any{"a"}).Kind)
	assert.Equal(t, TypeError, NormalizeString(true).Kind)
}

func TestNormalizeObject(t *testing.T) {
	obj, kind := NormalizeObject(map[string]any{"a": "b"})
	assert.Equal(t, OK, kind)
	assert.Equal(t, "b", obj["a"])

	obj, kind = NormalizeObject(`{"a":"b"}`)
	assert.Equal(t, OK, kind)
	assert.Equal(t, "b", obj["a"])

	_, kind = NormalizeObject("[1]")
	assert.Equal(t, ParseError, kind)

	_, kind = NormalizeObject(7)
	assert.Equal(t, TypeError, kind)
}
