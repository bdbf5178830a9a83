package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"42", int64(42)},
		{" -7 ", int64(-7)},
		{"10.5", 10.5},
		{"1e3", 1000.0},
		{"True", true},
		{"false", false},
		{"", nil},
		{"  ", nil},
		{"NaN", nil},
		{"NULL", nil},
		{"hello", "hello"},
		{"inf", "inf"},
		{" padded ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseValue(tt.input))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "12", FormatValue(int64(12)))
	assert.Equal(t, "10.5", FormatValue(10.5))
	assert.Equal(t, "30.0", FormatValue(30.0))
	assert.Equal(t, "True", FormatValue(true))
	assert.Equal(t, "abc", FormatValue("abc"))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, v := range []interface{}{int64(3), 2.25, 30.0, true, "text", nil} {
		assert.Equal(t, v, ParseValue(FormatValue(v)))
	}
}

func TestNumeric(t *testing.T) {
	v, ok := Numeric(int64(4))
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = Numeric(uint8(2))
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = Numeric("4")
	assert.False(t, ok)

	_, ok = Numeric(nil)
	assert.False(t, ok)

	_, ok = Numeric(math.NaN())
	assert.False(t, ok)
}
