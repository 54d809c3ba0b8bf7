package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/domain"
	"freightx/internal/parser"
)

func text(t *testing.T, c *parser.Candidate, key string) string {
	t.Helper()
	s, ok := c.Field(key).Text()
	require.True(t, ok, key)
	return s
}

func TestParse_CleanObject(t *testing.T) {
	c, err := parser.Parse(`{"origin_port_code": "CNSHA", "cargo_weight_kg": 500.0, "is_dangerous": false}`)

	require.NoError(t, err)
	assert.Equal(t, "CNSHA", text(t, c, "origin_port_code"))
	w, ok := c.Field("cargo_weight_kg").Float()
	assert.True(t, ok)
	assert.Equal(t, 500.0, w)
	dg, ok := c.Field("is_dangerous").Bool()
	assert.True(t, ok)
	assert.False(t, dg)
}

func TestParse_FencesAndProse(t *testing.T) {
	raw := "Here is the extraction:\n```json\n{\"incoterm\": \"CIF\", \"note\": \"see {braces}\"}\n```\nLet me know if you need more."

	c, err := parser.Parse(raw)

	require.NoError(t, err)
	assert.Equal(t, "CIF", text(t, c, "incoterm"))
	assert.Equal(t, "see {braces}", text(t, c, "note"))
}

func TestParse_FirstObjectWins(t *testing.T) {
	c, err := parser.Parse(`Shipment A: {"incoterm": "FOB"} Shipment B: {"incoterm": "DDP"}`)

	require.NoError(t, err)
	assert.Equal(t, "FOB", text(t, c, "incoterm"))
}

func TestParse_Array(t *testing.T) {
	c, err := parser.Parse(`[{"incoterm": "EXW"}, {"incoterm": "DAP"}]`)

	require.NoError(t, err)
	assert.Equal(t, "EXW", text(t, c, "incoterm"))
}

func TestParse_Repairs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"trailing comma", `{"incoterm": "FCA", "cargo_cbm": 2.5,}`},
		{"single quotes", `{'incoterm': 'FCA', 'cargo_cbm': 2.5}`},
		{"python literals", `{"incoterm": "FCA", "cargo_cbm": 2.5, "is_dangerous": True, "cargo_weight_kg": None}`},
		{"unquoted keys and values", `{incoterm: FCA, cargo_cbm: 2.5}`},
		{"smart quotes", `{“incoterm”: “FCA”, “cargo_cbm”: 2.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parser.Parse("Result: " + tt.raw)

			require.NoError(t, err)
			assert.Equal(t, "FCA", text(t, c, "incoterm"))
			cbm, ok := c.Field("cargo_cbm").Float()
			assert.True(t, ok)
			assert.Equal(t, 2.5, cbm)
		})
	}
}

func TestParse_PythonNoneIsNull(t *testing.T) {
	c, err := parser.Parse(`{"cargo_weight_kg": None, "is_dangerous": True}`)

	require.NoError(t, err)
	assert.True(t, c.Has("cargo_weight_kg"))
	assert.True(t, c.Field("cargo_weight_kg").IsNull())
	dg, ok := c.Field("is_dangerous").Bool()
	assert.True(t, ok)
	assert.True(t, dg)
}

func TestParse_Garbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "I cannot help with that.", "```\n```"} {
		c, err := parser.Parse(raw)

		assert.Nil(t, c, raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, domain.ErrParseFailure), raw)

		var pf *parser.ParseFailure
		require.True(t, errors.As(err, &pf))
		assert.Equal(t, raw, pf.Raw)
	}
}

func TestParse_UnrepairableObject(t *testing.T) {
	_, err := parser.Parse(`{"incoterm": "FOB" "cargo": [1, 2}`)

	var pf *parser.ParseFailure
	require.True(t, errors.As(err, &pf))
	assert.Contains(t, pf.Error(), "malformed")
}
