package sheets

import (
	"regexp"
	"strings"

	sheets_v4 "google.golang.org/api/sheets/v4"
)

// Enum values accepted by the builders, mirroring what the Sheets API takes.
var (
	chartTypes = map[string]bool{
		"BAR": true, "LINE": true, "PIE": true,
		"COLUMN": true, "AREA": true, "SCATTER": true,
	}
	mergeTypes = map[string]bool{
		"MERGE_ALL": true, "MERGE_COLUMNS": true, "MERGE_ROWS": true,
	}
	horizontalAlignments = map[string]bool{
		"LEFT": true, "CENTER": true, "RIGHT": true,
	}
	verticalAlignments = map[string]bool{
		"TOP": true, "MIDDLE": true, "BOTTOM": true,
	}
	wrapStrategies = map[string]bool{
		"OVERFLOW_CELL": true, "LEGACY_WRAP": true, "CLIP": true, "WRAP": true,
	}
	legendPositions = map[string]bool{
		"RIGHT": true, "TOP": true, "BOTTOM": true, "LEFT": true, "NONE": true,
	}
	namedRangeScopes = map[string]bool{
		"WORKBOOK": true, "SHEET": true,
	}
)

// conditionArity maps each supported conditional-format condition type to
// the exact number of values it takes.
var conditionArity = map[string]int{
	"NUMBER_GREATER":         1,
	"NUMBER_GREATER_THAN_EQ": 1,
	"NUMBER_LESS":            1,
	"NUMBER_LESS_THAN_EQ":    1,
	"NUMBER_EQ":              1,
	"NUMBER_NOT_EQ":          1,
	"NUMBER_BETWEEN":         2,
	"NUMBER_NOT_BETWEEN":     2,
	"TEXT_CONTAINS":          1,
	"TEXT_NOT_CONTAINS":      1,
	"TEXT_STARTS_WITH":       1,
	"TEXT_ENDS_WITH":         1,
	"TEXT_EQ":                1,
	"DATE_BEFORE":            1,
	"DATE_AFTER":             1,
	"DATE_ON_OR_BEFORE":      1,
	"DATE_ON_OR_AFTER":       1,
	"BLANK":                  0,
	"NOT_BLANK":              0,
	"CUSTOM_FORMULA":         1,
}

// OperationSpec is a tagged union over the mutation kinds the dispatcher
// accepts. Exactly one variant must be set.
type OperationSpec struct {
	Format            *FormatSpec            `json:"format,omitempty"`
	ConditionalFormat *ConditionalFormatSpec `json:"conditional_format,omitempty"`
	Merge             *MergeSpec             `json:"merge,omitempty"`
	Chart             *ChartSpec             `json:"chart,omitempty"`
	Formula           *FormulaSpec           `json:"formula,omitempty"`
	NamedRange        *NamedRangeSpec        `json:"named_range,omitempty"`
}

// Kind names the active variant, or "empty".
func (s *OperationSpec) Kind() string {
	switch {
	case s.Format != nil:
		return "format"
	case s.ConditionalFormat != nil:
		return "conditional_format"
	case s.Merge != nil:
		return "merge"
	case s.Chart != nil:
		return "chart"
	case s.Formula != nil:
		return "formula"
	case s.NamedRange != nil:
		return "named_range"
	default:
		return "empty"
	}
}

// Validate checks that exactly one variant is active and that the active
// variant is internally consistent. Builders assume a validated spec.
func (s *OperationSpec) Validate() error {
	count := 0
	var err error
	if s.Format != nil {
		count++
		err = s.Format.Validate()
	}
	if s.ConditionalFormat != nil {
		count++
		err = s.ConditionalFormat.Validate()
	}
	if s.Merge != nil {
		count++
		err = s.Merge.Validate()
	}
	if s.Chart != nil {
		count++
		err = s.Chart.Validate()
	}
	if s.Formula != nil {
		count++
		err = s.Formula.Validate()
	}
	if s.NamedRange != nil {
		count++
		err = s.NamedRange.Validate()
	}
	if count == 0 {
		return validationErrorf(ValidationBadValue, "operation", "no operation specified")
	}
	if count > 1 {
		return validationErrorf(ValidationBadValue, "operation", "multiple operations in one spec")
	}
	return err
}

// FormatSpec describes cell styling applied via a repeatCell request.
// Only the fields present are written; the field mask lists exactly them.
type FormatSpec struct {
	Range RangeAddress

	Bold          *bool
	Italic        *bool
	Underline     *bool
	Strikethrough *bool
	FontFamily    string
	FontSize      int64
	TextColor     *sheets_v4.Color

	BackgroundColor     *sheets_v4.Color
	HorizontalAlignment string
	VerticalAlignment   string
	WrapStrategy        string
	NumberFormatPattern string
}

func (f *FormatSpec) hasTextFormat() bool {
	return f.Bold != nil || f.Italic != nil || f.Underline != nil ||
		f.Strikethrough != nil || f.FontFamily != "" || f.FontSize > 0 ||
		f.TextColor != nil
}

func (f *FormatSpec) Validate() error {
	if !f.hasTextFormat() && f.BackgroundColor == nil &&
		f.HorizontalAlignment == "" && f.VerticalAlignment == "" &&
		f.WrapStrategy == "" && f.NumberFormatPattern == "" {
		return &ValidationError{Kind: ValidationEmptyFormat, Field: "format", Message: "no styling fields present"}
	}
	if f.HorizontalAlignment != "" && !horizontalAlignments[f.HorizontalAlignment] {
		return validationErrorf(ValidationInvalidEnum, "horizontal_alignment", "unsupported value %q", f.HorizontalAlignment)
	}
	if f.VerticalAlignment != "" && !verticalAlignments[f.VerticalAlignment] {
		return validationErrorf(ValidationInvalidEnum, "vertical_alignment", "unsupported value %q", f.VerticalAlignment)
	}
	if f.WrapStrategy != "" && !wrapStrategies[f.WrapStrategy] {
		return validationErrorf(ValidationInvalidEnum, "wrap_strategy", "unsupported value %q", f.WrapStrategy)
	}
	if f.FontSize < 0 {
		return validationErrorf(ValidationBadValue, "font_size", "must be positive")
	}
	return nil
}

// GradientPoint is one interpolation point of a gradient rule.
type GradientPoint struct {
	Color *sheets_v4.Color
	Type  string // MIN, MAX, NUMBER, PERCENT, PERCENTILE
	Value string
}

// ConditionalFormatSpec describes an addConditionalFormatRule request:
// either a boolean rule (condition + style) or a gradient rule.
type ConditionalFormatSpec struct {
	Range RangeAddress

	ConditionType   string
	ConditionValues []string

	BackgroundColor *sheets_v4.Color
	TextColor       *sheets_v4.Color
	Bold            *bool
	Italic          *bool

	Gradient []GradientPoint // 2 or 3 points make this a gradient rule
}

func (c *ConditionalFormatSpec) Validate() error {
	if len(c.Gradient) > 0 {
		if len(c.Gradient) != 2 && len(c.Gradient) != 3 {
			return validationErrorf(ValidationArityMismatch, "gradient", "needs 2 or 3 points, got %d", len(c.Gradient))
		}
		for _, p := range c.Gradient {
			if p.Color == nil {
				return validationErrorf(ValidationBadColor, "gradient", "point without a color")
			}
		}
		return nil
	}

	arity, ok := conditionArity[c.ConditionType]
	if !ok {
		return validationErrorf(ValidationInvalidEnum, "condition_type", "unsupported condition %q", c.ConditionType)
	}
	if len(c.ConditionValues) != arity {
		return validationErrorf(ValidationArityMismatch, "condition_values",
			"%s takes %d value(s), got %d", c.ConditionType, arity, len(c.ConditionValues))
	}
	if c.ConditionType == "CUSTOM_FORMULA" && !strings.HasPrefix(c.ConditionValues[0], "=") {
		return validationErrorf(ValidationBadValue, "condition_values", "custom formula must start with '='")
	}
	if c.BackgroundColor == nil && c.TextColor == nil && c.Bold == nil && c.Italic == nil {
		return &ValidationError{Kind: ValidationEmptyFormat, Field: "conditional_format", Message: "no styling fields present"}
	}
	return nil
}

// MergeSpec describes a mergeCells request.
type MergeSpec struct {
	Range     RangeAddress
	MergeType string
}

func (m *MergeSpec) Validate() error {
	if !mergeTypes[m.MergeType] {
		return validationErrorf(ValidationInvalidEnum, "merge_type", "unsupported value %q", m.MergeType)
	}
	if !m.Range.spansMultipleCells() {
		return validationErrorf(ValidationBadValue, "range", "merge needs at least two cells")
	}
	return nil
}

// ChartSpec describes chart creation, spec update, or repositioning.
// ChartID zero means create; update and reposition need an existing ID.
type ChartSpec struct {
	ChartID   int64
	ChartType string
	DataRange RangeAddress

	Title          string
	Subtitle       string
	LegendPosition string
	PieHole        float64

	// Overlay placement
	Anchor         *RangeAddress
	OffsetXPixels  int64
	OffsetYPixels  int64
	WidthPixels    int64
	HeightPixels   int64
	RepositionOnly bool
}

func (c *ChartSpec) Validate() error {
	if c.RepositionOnly {
		if c.ChartID == 0 {
			return validationErrorf(ValidationBadValue, "chart_id", "repositioning needs an existing chart ID")
		}
		if c.Anchor == nil {
			return validationErrorf(ValidationBadValue, "anchor", "repositioning needs an anchor cell")
		}
		return nil
	}
	if !chartTypes[c.ChartType] {
		return validationErrorf(ValidationInvalidEnum, "chart_type", "unsupported value %q", c.ChartType)
	}
	if c.DataRange.StartCol == Unbounded && c.DataRange.StartRow == Unbounded {
		return validationErrorf(ValidationBadValue, "data_range", "data range must be bounded on at least one axis")
	}
	if c.DataRange.StartRow != Unbounded && c.DataRange.EndRow == c.DataRange.StartRow {
		return validationErrorf(ValidationBadValue, "data_range", "data range is empty")
	}
	if c.LegendPosition != "" && !legendPositions[c.LegendPosition] {
		return validationErrorf(ValidationInvalidEnum, "legend_position", "unsupported value %q", c.LegendPosition)
	}
	if c.ChartType == "PIE" && (c.PieHole < 0 || c.PieHole > 0.9) {
		return validationErrorf(ValidationBadValue, "pie_hole", "must be between 0 and 0.9")
	}
	return nil
}

// FormulaSpec describes applying a formula to a range: a plain values.update
// with USER_ENTERED, or an updateCells request when Array is set.
type FormulaSpec struct {
	Range   RangeAddress
	Formula string
	Array   bool
}

func (f *FormulaSpec) Validate() error {
	if strings.TrimSpace(f.Formula) == "" {
		return validationErrorf(ValidationBadValue, "formula", "empty formula")
	}
	return nil
}

// NormalizedFormula returns the formula with a leading '=' guaranteed.
func (f *FormulaSpec) NormalizedFormula() string {
	formula := strings.TrimSpace(f.Formula)
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	return formula
}

// Named-range actions.
const (
	NamedRangeAdd    = "add"
	NamedRangeDelete = "delete"
)

var (
	namedRangeName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	cellRefLike    = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]+$`)
	r1c1RefLike    = regexp.MustCompile(`^[Rr][0-9]*[Cc][0-9]*$`)
)

// NamedRangeSpec describes an addNamedRange or deleteNamedRange request.
type NamedRangeSpec struct {
	Action       string
	Name         string
	Range        RangeAddress
	Scope        string // WORKBOOK or SHEET
	NamedRangeID string // delete by ID
}

func (n *NamedRangeSpec) Validate() error {
	switch n.Action {
	case NamedRangeAdd:
		if err := validateRangeName(n.Name); err != nil {
			return err
		}
		if n.Scope != "" && !namedRangeScopes[n.Scope] {
			return validationErrorf(ValidationInvalidEnum, "scope", "unsupported value %q", n.Scope)
		}
		if n.Range.StartCol == Unbounded && n.Range.StartRow == Unbounded {
			return validationErrorf(ValidationBadValue, "range", "named range must be bounded on at least one axis")
		}
		return nil
	case NamedRangeDelete:
		if n.NamedRangeID == "" && n.Name == "" {
			return validationErrorf(ValidationBadValue, "named_range", "delete needs a name or ID")
		}
		return nil
	default:
		return validationErrorf(ValidationInvalidEnum, "action", "unsupported action %q", n.Action)
	}
}

// validateRangeName enforces the Sheets rules for named-range identifiers:
// word characters, not starting with a digit, and not mistakable for a
// cell reference in either A1 or R1C1 notation.
func validateRangeName(name string) error {
	if name == "" {
		return validationErrorf(ValidationBadName, "name", "empty name")
	}
	if len(name) > 250 {
		return validationErrorf(ValidationBadName, "name", "name exceeds 250 characters")
	}
	if !namedRangeName.MatchString(name) {
		return validationErrorf(ValidationBadName, "name", "%q contains invalid characters", name)
	}
	if cellRefLike.MatchString(name) {
		return validationErrorf(ValidationBadName, "name", "%q looks like a cell reference", name)
	}
	if r1c1RefLike.MatchString(name) {
		return validationErrorf(ValidationBadName, "name", "%q looks like an R1C1 reference", name)
	}
	return nil
}
