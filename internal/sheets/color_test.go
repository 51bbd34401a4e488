package sheets

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToColor(t *testing.T) {
	c, err := HexToColor("#FF0000")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Red)
	assert.Equal(t, 0.0, c.Green)
	assert.Equal(t, 0.0, c.Blue)
	assert.Equal(t, 1.0, c.Alpha)

	// Alpha channel
	c, err = HexToColor("#00FF0080")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Green)
	assert.InDelta(t, 0.5, c.Alpha, 0.01)

	// Leading '#' optional
	c, err = HexToColor("0000ff")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Blue)
}

func TestHexToColor_Invalid(t *testing.T) {
	for _, input := range []string{"", "#12345", "#12345G", "#1234567", "red"} {
		_, err := HexToColor(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationBadColor}))
	}
}

func TestRGBToColor_Clamps(t *testing.T) {
	c := RGBToColor(1.5, -0.2, 0.5, 2.0)
	assert.Equal(t, 1.0, c.Red)
	assert.Equal(t, 0.0, c.Green)
	assert.Equal(t, 0.5, c.Blue)
	assert.Equal(t, 1.0, c.Alpha)

	// Black must still reach the wire
	black := RGBToColor(0, 0, 0, 1)
	assert.Contains(t, black.ForceSendFields, "Red")
	assert.Contains(t, black.ForceSendFields, "Alpha")
}

func TestParseColor_Named(t *testing.T) {
	c, err := ParseColor("red")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Red)

	c, err = ParseColor("White")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Red)
	assert.Equal(t, 1.0, c.Green)
	assert.Equal(t, 1.0, c.Blue)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)

	_, err = ParseColor("")
	assert.Error(t, err)
}

// The same color expressed as hex, floats, and a named alias must normalize
// to the same wire value.
func TestColorNormalizationEquivalence(t *testing.T) {
	fromHex, err := ParseColor("#f3f3f3")
	require.NoError(t, err)

	v := float64(0xf3) / 255.0
	fromRGB := RGBToColor(v, v, v, 1.0)

	assert.InDelta(t, fromRGB.Red, fromHex.Red, 1e-9)
	assert.InDelta(t, fromRGB.Green, fromHex.Green, 1e-9)
	assert.InDelta(t, fromRGB.Blue, fromHex.Blue, 1e-9)

	fromName, err := ParseColor("gray")
	require.NoError(t, err)
	fromGreyAlias, err := ParseColor("grey")
	require.NoError(t, err)
	assert.Equal(t, fromName.Red, fromGreyAlias.Red)

	fromHexGray, err := ParseColor("#808080")
	require.NoError(t, err)
	assert.True(t, math.Abs(fromHexGray.Red-fromName.Red) < 0.01,
		"hex gray %v and named gray %v should agree", fromHexGray.Red, fromName.Red)
}

func TestNumberFormatTypeForPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"0.00%", "PERCENT"},
		{"$#,##0.00", "CURRENCY"},
		{"€0.00", "CURRENCY"},
		{"MM/DD/YYYY", "DATE"},
		{"yyyy-mm-dd", "DATE"},
		{"hh:ss", "TIME"},
		{"0.00", "NUMBER"},
		{"#,##0", "NUMBER"},
		{"@", "TEXT"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberFormatTypeForPattern(tt.pattern))
		})
	}
}
