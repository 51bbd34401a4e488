package sheets_tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/teemow/sheetsmcp/internal/sheets"
)

// allowedOperationFields lists the legal fields per batch operation type.
// Unknown fields are rejected at construction rather than passed through.
var allowedOperationFields = map[string]map[string]bool{
	"format": {
		"range": true, "bold": true, "italic": true, "underline": true,
		"strikethrough": true, "fontFamily": true, "fontSize": true,
		"textColor": true, "backgroundColor": true,
		"horizontalAlignment": true, "verticalAlignment": true,
		"wrapStrategy": true, "numberFormat": true,
	},
	"conditional_format": {
		"range": true, "conditionType": true, "conditionValues": true,
		"backgroundColor": true, "textColor": true, "bold": true, "italic": true,
	},
	"merge": {
		"range": true, "mergeType": true,
	},
	"chart": {
		"chartId": true, "chartType": true, "dataRange": true,
		"title": true, "subtitle": true, "legendPosition": true, "pieHole": true,
		"anchorCell": true, "offsetX": true, "offsetY": true,
		"width": true, "height": true, "repositionOnly": true,
	},
	"formula": {
		"range": true, "formula": true, "array": true,
	},
	"named_range": {
		"action": true, "name": true, "range": true, "scope": true, "namedRangeId": true,
	},
}

// parseOperationEntry builds an OperationSpec from one batch entry, rejecting
// unknown operation types and unknown fields.
func parseOperationEntry(entry map[string]interface{}) (*sheets.OperationSpec, error) {
	kind, _ := entry["type"].(string)
	if kind == "" {
		return nil, fmt.Errorf("missing operation type")
	}
	allowed, ok := allowedOperationFields[kind]
	if !ok {
		kinds := make([]string, 0, len(allowedOperationFields))
		for k := range allowedOperationFields {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		return nil, fmt.Errorf("unknown operation type %q (supported: %s)", kind, strings.Join(kinds, ", "))
	}
	for field := range entry {
		if field == "type" {
			continue
		}
		if !allowed[field] {
			return nil, fmt.Errorf("unknown field %q for operation type %q", field, kind)
		}
	}

	switch kind {
	case "format":
		spec, err := parseFormatArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{Format: spec}, nil
	case "conditional_format":
		spec, err := parseConditionalFormatArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{ConditionalFormat: spec}, nil
	case "merge":
		spec, err := parseMergeArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{Merge: spec}, nil
	case "chart":
		spec, err := parseChartArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{Chart: spec}, nil
	case "formula":
		spec, err := parseFormulaArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{Formula: spec}, nil
	case "named_range":
		spec, err := parseNamedRangeArgs(entry)
		if err != nil {
			return nil, err
		}
		return &sheets.OperationSpec{NamedRange: spec}, nil
	default:
		return nil, fmt.Errorf("unknown operation type %q", kind)
	}
}

func parseFormatArgs(args map[string]interface{}) (*sheets.FormatSpec, error) {
	addr, err := parseRangeArg(args, "range")
	if err != nil {
		return nil, err
	}

	spec := &sheets.FormatSpec{
		Range:               addr,
		Bold:                getBoolPtr(args, "bold"),
		Italic:              getBoolPtr(args, "italic"),
		Underline:           getBoolPtr(args, "underline"),
		Strikethrough:       getBoolPtr(args, "strikethrough"),
		FontFamily:          getString(args, "fontFamily"),
		FontSize:            getInt64(args, "fontSize"),
		HorizontalAlignment: strings.ToUpper(getString(args, "horizontalAlignment")),
		VerticalAlignment:   strings.ToUpper(getString(args, "verticalAlignment")),
		WrapStrategy:        strings.ToUpper(getString(args, "wrapStrategy")),
		NumberFormatPattern: getString(args, "numberFormat"),
	}

	if spec.TextColor, err = parseColorArg(args, "textColor"); err != nil {
		return nil, err
	}
	if spec.BackgroundColor, err = parseColorArg(args, "backgroundColor"); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseConditionalFormatArgs(args map[string]interface{}) (*sheets.ConditionalFormatSpec, error) {
	addr, err := parseRangeArg(args, "range")
	if err != nil {
		return nil, err
	}

	values, err := getStringList(args, "conditionValues")
	if err != nil {
		return nil, err
	}

	spec := &sheets.ConditionalFormatSpec{
		Range:           addr,
		ConditionType:   strings.ToUpper(getString(args, "conditionType")),
		ConditionValues: values,
		Bold:            getBoolPtr(args, "bold"),
		Italic:          getBoolPtr(args, "italic"),
	}

	if spec.BackgroundColor, err = parseColorArg(args, "backgroundColor"); err != nil {
		return nil, err
	}
	if spec.TextColor, err = parseColorArg(args, "textColor"); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseMergeArgs(args map[string]interface{}) (*sheets.MergeSpec, error) {
	addr, err := parseRangeArg(args, "range")
	if err != nil {
		return nil, err
	}
	mergeType := strings.ToUpper(getString(args, "mergeType"))
	if mergeType == "" {
		mergeType = "MERGE_ALL"
	}
	return &sheets.MergeSpec{Range: addr, MergeType: mergeType}, nil
}

func parseChartArgs(args map[string]interface{}) (*sheets.ChartSpec, error) {
	spec := &sheets.ChartSpec{
		ChartID:        getInt64(args, "chartId"),
		ChartType:      strings.ToUpper(getString(args, "chartType")),
		Title:          getString(args, "title"),
		Subtitle:       getString(args, "subtitle"),
		LegendPosition: strings.ToUpper(getString(args, "legendPosition")),
		PieHole:        getFloat64(args, "pieHole"),
		OffsetXPixels:  getInt64(args, "offsetX"),
		OffsetYPixels:  getInt64(args, "offsetY"),
		WidthPixels:    getInt64(args, "width"),
		HeightPixels:   getInt64(args, "height"),
		RepositionOnly: getBool(args, "repositionOnly"),
	}

	if !spec.RepositionOnly {
		addr, err := parseRangeArg(args, "dataRange")
		if err != nil {
			return nil, err
		}
		spec.DataRange = addr
	}

	if anchor := getString(args, "anchorCell"); anchor != "" {
		addr, err := sheets.ParseRange(anchor)
		if err != nil {
			return nil, fmt.Errorf("anchorCell: %w", err)
		}
		spec.Anchor = &addr
	}
	return spec, nil
}

func parseFormulaArgs(args map[string]interface{}) (*sheets.FormulaSpec, error) {
	addr, err := parseRangeArg(args, "range")
	if err != nil {
		return nil, err
	}
	return &sheets.FormulaSpec{
		Range:   addr,
		Formula: getString(args, "formula"),
		Array:   getBool(args, "array"),
	}, nil
}

func parseNamedRangeArgs(args map[string]interface{}) (*sheets.NamedRangeSpec, error) {
	spec := &sheets.NamedRangeSpec{
		Action:       strings.ToLower(getString(args, "action")),
		Name:         getString(args, "name"),
		Scope:        strings.ToUpper(getString(args, "scope")),
		NamedRangeID: getString(args, "namedRangeId"),
	}
	if spec.Action == "" {
		spec.Action = sheets.NamedRangeAdd
	}
	if spec.Action == sheets.NamedRangeAdd {
		addr, err := parseRangeArg(args, "range")
		if err != nil {
			return nil, err
		}
		spec.Range = addr
	}
	return spec, nil
}

// parseRangeArg parses and validates the named A1-range argument.
func parseRangeArg(args map[string]interface{}, key string) (sheets.RangeAddress, error) {
	text, _ := args[key].(string)
	if text == "" {
		return sheets.RangeAddress{}, fmt.Errorf("%s is required", key)
	}
	addr, err := sheets.ParseRange(text)
	if err != nil {
		return sheets.RangeAddress{}, err
	}
	return addr, nil
}

// parseColorArg normalizes the supported color inputs to the API color type:
// a hex string ("#f3f3f3"), a named color ("red"), an {red,green,blue[,alpha]}
// object of floats in [0,1], or an [r,g,b] array.
func parseColorArg(args map[string]interface{}, key string) (*sheets_v4.Color, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case string:
		c, err := sheets.ParseColor(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return c, nil
	case map[string]interface{}:
		alpha := 1.0
		if a, ok := toFloat(v["alpha"]); ok {
			alpha = a
		}
		r, rok := toFloat(v["red"])
		g, gok := toFloat(v["green"])
		b, bok := toFloat(v["blue"])
		if !rok || !gok || !bok {
			return nil, fmt.Errorf("%s: RGB object needs red, green, and blue components", key)
		}
		return sheets.RGBToColor(r, g, b, alpha), nil
	case []interface{}:
		if len(v) != 3 && len(v) != 4 {
			return nil, fmt.Errorf("%s: RGB array needs 3 or 4 components, got %d", key, len(v))
		}
		components := make([]float64, len(v))
		for i, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("%s: RGB component %d is not a number", key, i)
			}
			components[i] = f
		}
		alpha := 1.0
		if len(components) == 4 {
			alpha = components[3]
		}
		return sheets.RGBToColor(components[0], components[1], components[2], alpha), nil
	default:
		return nil, fmt.Errorf("%s must be a hex string, named color, or RGB components", key)
	}
}

// parseValuesArg decodes a 2D cell-value array from either a decoded array
// or a JSON string, since MCP clients serialize nested arrays both ways.
func parseValuesArg(raw interface{}) ([][]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("values is required")
	case string:
		var values [][]interface{}
		if err := json.Unmarshal([]byte(v), &values); err != nil {
			return nil, fmt.Errorf("values must be a JSON 2D array: %v", err)
		}
		return values, nil
	case []interface{}:
		values := make([][]interface{}, len(v))
		for i, item := range v {
			row, ok := item.([]interface{})
			if !ok {
				return nil, fmt.Errorf("values[%d] must be an array", i)
			}
			values[i] = row
		}
		return values, nil
	default:
		return nil, fmt.Errorf("values must be a string or 2D array")
	}
}

func getString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func getBool(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// getBoolPtr distinguishes "not provided" from an explicit false.
func getBoolPtr(args map[string]interface{}, key string) *bool {
	if b, ok := args[key].(bool); ok {
		return &b
	}
	return nil
}

func getInt64(args map[string]interface{}, key string) int64 {
	if f, ok := toFloat(args[key]); ok {
		return int64(f)
	}
	return 0
}

func getFloat64(args map[string]interface{}, key string) float64 {
	f, _ := toFloat(args[key])
	return f
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// getStringList reads a string-or-array argument. Unlike the batch helper it
// accepts an absent value, since some condition types take no values.
func getStringList(args map[string]interface{}, key string) ([]string, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var decoded []string
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				return decoded, nil
			}
		}
		return []string{v}, nil
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				out[i] = fmt.Sprintf("%v", item)
				continue
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", key)
	}
}
