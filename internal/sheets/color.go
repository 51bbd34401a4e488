package sheets

import (
	"strconv"
	"strings"

	sheets_v4 "google.golang.org/api/sheets/v4"
)

// namedColors is the CSS basic color set plus the aliases the tool surface
// accepts. Values are RGB in [0,1].
var namedColors = map[string][3]float64{
	"black":   {0, 0, 0},
	"white":   {1, 1, 1},
	"red":     {1, 0, 0},
	"green":   {0, 0.5, 0},
	"lime":    {0, 1, 0},
	"blue":    {0, 0, 1},
	"yellow":  {1, 1, 0},
	"cyan":    {0, 1, 1},
	"aqua":    {0, 1, 1},
	"magenta": {1, 0, 1},
	"fuchsia": {1, 0, 1},
	"gray":    {0.5, 0.5, 0.5},
	"grey":    {0.5, 0.5, 0.5},
	"silver":  {0.75, 0.75, 0.75},
	"maroon":  {0.5, 0, 0},
	"olive":   {0.5, 0.5, 0},
	"navy":    {0, 0, 0.5},
	"teal":    {0, 0.5, 0.5},
	"purple":  {0.5, 0, 0.5},
	"orange":  {1, 0.647, 0},
}

// RGBToColor builds an API color from component floats, clamping each to [0,1].
func RGBToColor(red, green, blue, alpha float64) *sheets_v4.Color {
	c := &sheets_v4.Color{
		Red:   clamp01(red),
		Green: clamp01(green),
		Blue:  clamp01(blue),
		Alpha: clamp01(alpha),
	}
	// Zero components are meaningful (black) and must reach the wire
	c.ForceSendFields = []string{"Red", "Green", "Blue", "Alpha"}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// HexToColor parses #rrggbb or #rrggbbaa (leading '#' optional).
func HexToColor(hex string) (*sheets_v4.Color, error) {
	raw := strings.TrimPrefix(hex, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return nil, validationErrorf(ValidationBadColor, "color", "invalid hex color %q", hex)
	}
	parse := func(s string) (float64, error) {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0, validationErrorf(ValidationBadColor, "color", "invalid hex color %q", hex)
		}
		return float64(v) / 255.0, nil
	}
	r, err := parse(raw[0:2])
	if err != nil {
		return nil, err
	}
	g, err := parse(raw[2:4])
	if err != nil {
		return nil, err
	}
	b, err := parse(raw[4:6])
	if err != nil {
		return nil, err
	}
	a := 1.0
	if len(raw) == 8 {
		a, err = parse(raw[6:8])
		if err != nil {
			return nil, err
		}
	}
	return RGBToColor(r, g, b, a), nil
}

// ParseColor accepts "#rrggbb", "#rrggbbaa", or a named color.
func ParseColor(value string) (*sheets_v4.Color, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, validationErrorf(ValidationBadColor, "color", "empty color")
	}
	if strings.HasPrefix(value, "#") {
		return HexToColor(value)
	}
	if rgb, ok := namedColors[strings.ToLower(value)]; ok {
		return RGBToColor(rgb[0], rgb[1], rgb[2], 1.0), nil
	}
	// Bare hex without '#' still parses if it looks like one
	if len(value) == 6 || len(value) == 8 {
		if c, err := HexToColor(value); err == nil {
			return c, nil
		}
	}
	return nil, validationErrorf(ValidationBadColor, "color", "unknown color %q", value)
}

// NumberFormatTypeForPattern infers the API number-format type from a
// pattern string: "0%" is PERCENT, "$0.00" CURRENCY, "MM/DD/YYYY" DATE.
func NumberFormatTypeForPattern(pattern string) string {
	upper := strings.ToUpper(pattern)
	switch {
	case strings.Contains(pattern, "%"):
		return "PERCENT"
	case strings.ContainsAny(pattern, "$€£"):
		return "CURRENCY"
	case strings.ContainsAny(upper, "YMD"):
		return "DATE"
	case strings.Contains(upper, "H") || strings.Contains(upper, "MM") || strings.Contains(upper, "SS"):
		return "TIME"
	case strings.ContainsAny(pattern, ".#0"):
		return "NUMBER"
	default:
		return "TEXT"
	}
}
