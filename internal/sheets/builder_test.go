package sheets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func mustRange(t *testing.T, a1 string) RangeAddress {
	t.Helper()
	addr, err := ParseRange(a1)
	require.NoError(t, err)
	return addr
}

// staticResolver maps every sheet name to a fixed ID.
func staticResolver(id int64) SheetResolver {
	return func(string) (int64, error) { return id, nil }
}

func TestOperationSpec_ExactlyOneVariant(t *testing.T) {
	empty := &OperationSpec{}
	err := empty.Validate()
	require.Error(t, err)
	assert.Equal(t, "empty", empty.Kind())

	double := &OperationSpec{
		Merge:   &MergeSpec{Range: RangeAddress{EndRow: 2, EndCol: 2}, MergeType: "MERGE_ALL"},
		Formula: &FormulaSpec{Formula: "=SUM(A1:A2)"},
	}
	err = double.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationBadValue}))
}

func TestFormatSpec_EmptyFormatRejected(t *testing.T) {
	spec := &OperationSpec{Format: &FormatSpec{Range: RangeAddress{EndRow: 1, EndCol: 1}}}
	err := spec.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationEmptyFormat}))
}

func TestFormatSpec_InvalidAlignment(t *testing.T) {
	spec := &FormatSpec{
		Range:               RangeAddress{EndRow: 1, EndCol: 1},
		HorizontalAlignment: "MIDDLE",
	}
	err := spec.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationInvalidEnum}))

	spec.HorizontalAlignment = "CENTER"
	assert.NoError(t, spec.Validate())
}

func TestBuildFormatRequest_FieldMaskMatchesSetFields(t *testing.T) {
	bg, err := ParseColor("#f3f3f3")
	require.NoError(t, err)

	spec := &OperationSpec{Format: &FormatSpec{
		Range:           mustRange(t, "Sheet1!A1:B2"),
		Bold:            boolPtr(true),
		FontSize:        12,
		BackgroundColor: bg,
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(7))
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	repeat := reqs[0].RepeatCell
	require.NotNil(t, repeat)
	assert.Equal(t, int64(7), repeat.Range.SheetId)
	assert.Equal(t, int64(2), repeat.Range.EndRowIndex)
	assert.Equal(t, "userEnteredFormat(backgroundColor,textFormat)", repeat.Fields)

	format := repeat.Cell.UserEnteredFormat
	require.NotNil(t, format.TextFormat)
	assert.True(t, format.TextFormat.Bold)
	assert.Equal(t, int64(12), format.TextFormat.FontSize)
	assert.Equal(t, bg, format.BackgroundColor)
	assert.Nil(t, format.NumberFormat)
}

func TestBuildFormatRequest_NumberFormat(t *testing.T) {
	spec := &OperationSpec{Format: &FormatSpec{
		Range:               mustRange(t, "A1:A10"),
		NumberFormatPattern: "$#,##0.00",
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(0))
	require.NoError(t, err)

	nf := reqs[0].RepeatCell.Cell.UserEnteredFormat.NumberFormat
	require.NotNil(t, nf)
	assert.Equal(t, "CURRENCY", nf.Type)
	assert.Equal(t, "$#,##0.00", nf.Pattern)
	assert.Equal(t, "userEnteredFormat(numberFormat)", reqs[0].RepeatCell.Fields)
}

func TestConditionalFormat_ArityValidation(t *testing.T) {
	base := func() *ConditionalFormatSpec {
		bg, _ := ParseColor("red")
		return &ConditionalFormatSpec{
			Range:           mustRange(t, "A1:A10"),
			BackgroundColor: bg,
		}
	}

	tests := []struct {
		name      string
		condition string
		values    []string
		wantKind  ValidationKind
	}{
		{"between needs two", "NUMBER_BETWEEN", []string{"1"}, ValidationArityMismatch},
		{"greater needs one", "NUMBER_GREATER", nil, ValidationArityMismatch},
		{"not blank takes none", "NOT_BLANK", []string{"x"}, ValidationArityMismatch},
		{"unknown condition", "NUMBER_WEIRD", []string{"1"}, ValidationInvalidEnum},
		{"custom formula needs equals", "CUSTOM_FORMULA", []string{"A1>5"}, ValidationBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base()
			spec.ConditionType = tt.condition
			spec.ConditionValues = tt.values
			err := spec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, &ValidationError{Kind: tt.wantKind}), "got %v", err)
		})
	}

	ok := base()
	ok.ConditionType = "NUMBER_BETWEEN"
	ok.ConditionValues = []string{"1", "10"}
	assert.NoError(t, ok.Validate())

	formula := base()
	formula.ConditionType = "CUSTOM_FORMULA"
	formula.ConditionValues = []string{"=A1>5"}
	assert.NoError(t, formula.Validate())
}

func TestBuildConditionalFormatRequest(t *testing.T) {
	bg, _ := ParseColor("#ff0000")
	spec := &OperationSpec{ConditionalFormat: &ConditionalFormatSpec{
		Range:           mustRange(t, "Sheet1!B2:B100"),
		ConditionType:   "NUMBER_GREATER",
		ConditionValues: []string{"5"},
		BackgroundColor: bg,
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(3))
	require.NoError(t, err)

	add := reqs[0].AddConditionalFormatRule
	require.NotNil(t, add)
	require.Len(t, add.Rule.Ranges, 1)
	assert.Equal(t, int64(3), add.Rule.Ranges[0].SheetId)

	rule := add.Rule.BooleanRule
	require.NotNil(t, rule)
	assert.Equal(t, "NUMBER_GREATER", rule.Condition.Type)
	require.Len(t, rule.Condition.Values, 1)
	assert.Equal(t, "5", rule.Condition.Values[0].UserEnteredValue)
	assert.Equal(t, bg, rule.Format.BackgroundColor)
}

func TestBuildConditionalFormatRequest_Gradient(t *testing.T) {
	low, _ := ParseColor("white")
	high, _ := ParseColor("green")
	spec := &OperationSpec{ConditionalFormat: &ConditionalFormatSpec{
		Range: mustRange(t, "A1:A10"),
		Gradient: []GradientPoint{
			{Color: low, Type: "MIN"},
			{Color: high, Type: "MAX"},
		},
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(0))
	require.NoError(t, err)

	gradient := reqs[0].AddConditionalFormatRule.Rule.GradientRule
	require.NotNil(t, gradient)
	assert.Equal(t, "MIN", gradient.Minpoint.Type)
	assert.Equal(t, "MAX", gradient.Maxpoint.Type)
	assert.Nil(t, gradient.Midpoint)
}

func TestMergeSpec_Validation(t *testing.T) {
	single := &MergeSpec{Range: mustRange(t, "B3"), MergeType: "MERGE_ALL"}
	err := single.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationBadValue}))

	badType := &MergeSpec{Range: mustRange(t, "A1:B2"), MergeType: "MERGE_DIAGONAL"}
	err = badType.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationInvalidEnum}))

	ok := &MergeSpec{Range: mustRange(t, "A1:B2"), MergeType: "MERGE_COLUMNS"}
	assert.NoError(t, ok.Validate())
}

func TestBuildMergeRequest(t *testing.T) {
	spec := &OperationSpec{Merge: &MergeSpec{
		Range:     mustRange(t, "Sheet1!A1:C3"),
		MergeType: "MERGE_ALL",
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(9))
	require.NoError(t, err)

	merge := reqs[0].MergeCells
	require.NotNil(t, merge)
	assert.Equal(t, "MERGE_ALL", merge.MergeType)
	assert.Equal(t, int64(3), merge.Range.EndRowIndex)
	assert.Equal(t, int64(3), merge.Range.EndColumnIndex)
}

func TestChartSpec_Validation(t *testing.T) {
	data := mustRange(t, "A1:B10")

	badType := &ChartSpec{ChartType: "DOUGHNUT", DataRange: data}
	err := badType.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationInvalidEnum}))

	badHole := &ChartSpec{ChartType: "PIE", DataRange: data, PieHole: 0.95}
	err = badHole.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationBadValue}))

	noID := &ChartSpec{RepositionOnly: true, Anchor: &RangeAddress{}}
	err = noID.Validate()
	require.Error(t, err)

	ok := &ChartSpec{ChartType: "COLUMN", DataRange: data, LegendPosition: "RIGHT"}
	assert.NoError(t, ok.Validate())
}

func TestBuildChartRequest_Create(t *testing.T) {
	spec := &OperationSpec{Chart: &ChartSpec{
		ChartType: "LINE",
		DataRange: mustRange(t, "Sheet1!A1:B10"),
		Title:     "Trend",
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(5))
	require.NoError(t, err)

	add := reqs[0].AddChart
	require.NotNil(t, add)
	assert.Equal(t, "Trend", add.Chart.Spec.Title)

	basic := add.Chart.Spec.BasicChart
	require.NotNil(t, basic)
	assert.Equal(t, "LINE", basic.ChartType)
	assert.Equal(t, "BOTTOM_LEGEND", basic.LegendPosition)
	assert.Equal(t, int64(1), basic.HeaderCount)
	require.Len(t, basic.Axis, 2)
	assert.Equal(t, "BOTTOM_AXIS", basic.Axis[0].Position)
	assert.Equal(t, "LEFT_AXIS", basic.Axis[1].Position)

	overlay := add.Chart.Position.OverlayPosition
	require.NotNil(t, overlay)
	assert.Equal(t, int64(defaultChartWidth), overlay.WidthPixels)
	assert.Equal(t, int64(defaultChartHeight), overlay.HeightPixels)
}

func TestBuildChartRequest_Pie(t *testing.T) {
	spec := &OperationSpec{Chart: &ChartSpec{
		ChartType: "PIE",
		DataRange: mustRange(t, "A1:B5"),
		PieHole:   0.4,
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(0))
	require.NoError(t, err)

	pie := reqs[0].AddChart.Chart.Spec.PieChart
	require.NotNil(t, pie)
	assert.Equal(t, 0.4, pie.PieHole)
}

func TestBuildChartRequest_Update(t *testing.T) {
	spec := &OperationSpec{Chart: &ChartSpec{
		ChartID:   123,
		ChartType: "BAR",
		DataRange: mustRange(t, "A1:B5"),
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(0))
	require.NoError(t, err)

	update := reqs[0].UpdateChartSpec
	require.NotNil(t, update)
	assert.Equal(t, int64(123), update.ChartId)
	assert.Equal(t, "BAR", update.Spec.BasicChart.ChartType)
}

func TestBuildChartRequest_Reposition(t *testing.T) {
	anchor := mustRange(t, "D5")
	spec := &OperationSpec{Chart: &ChartSpec{
		ChartID:        77,
		RepositionOnly: true,
		Anchor:         &anchor,
		WidthPixels:    300,
		HeightPixels:   200,
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(2))
	require.NoError(t, err)

	move := reqs[0].UpdateEmbeddedObjectPosition
	require.NotNil(t, move)
	assert.Equal(t, int64(77), move.ObjectId)

	cell := move.NewPosition.OverlayPosition.AnchorCell
	assert.Equal(t, int64(4), cell.RowIndex)
	assert.Equal(t, int64(3), cell.ColumnIndex)
	assert.Equal(t, int64(300), move.NewPosition.OverlayPosition.WidthPixels)
}

func TestFormulaSpec(t *testing.T) {
	empty := &FormulaSpec{Range: mustRange(t, "A1"), Formula: "  "}
	assert.Error(t, empty.Validate())

	plain := &FormulaSpec{Range: mustRange(t, "A1"), Formula: "SUM(B1:B10)"}
	require.NoError(t, plain.Validate())
	assert.Equal(t, "=SUM(B1:B10)", plain.NormalizedFormula())

	already := &FormulaSpec{Range: mustRange(t, "A1"), Formula: "=SUM(B1:B10)"}
	assert.Equal(t, "=SUM(B1:B10)", already.NormalizedFormula())
}

func TestFormulaSpec_PlainGoesThroughValuesAPI(t *testing.T) {
	spec := &OperationSpec{Formula: &FormulaSpec{
		Range:   mustRange(t, "C1"),
		Formula: "=A1+B1",
	}}
	require.NoError(t, spec.Validate())

	reqs, err := spec.BuildRequests(staticResolver(0))
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.NotNil(t, spec.ValuesOperation())
}

func TestBuildArrayFormulaRequest(t *testing.T) {
	spec := &OperationSpec{Formula: &FormulaSpec{
		Range:   mustRange(t, "Sheet1!C1:C10"),
		Formula: "=ARRAYFORMULA(A1:A10*B1:B10)",
		Array:   true,
	}}
	require.NoError(t, spec.Validate())
	assert.Nil(t, spec.ValuesOperation())

	reqs, err := spec.BuildRequests(staticResolver(4))
	require.NoError(t, err)

	update := reqs[0].UpdateCells
	require.NotNil(t, update)
	assert.Equal(t, "userEnteredValue", update.Fields)

	// Anchored at the top-left cell of the target range
	assert.Equal(t, int64(0), update.Range.StartRowIndex)
	assert.Equal(t, int64(1), update.Range.EndRowIndex)
	assert.Equal(t, int64(2), update.Range.StartColumnIndex)

	require.Len(t, update.Rows, 1)
	require.Len(t, update.Rows[0].Values, 1)
	require.NotNil(t, update.Rows[0].Values[0].UserEnteredValue.FormulaValue)
	assert.Equal(t, "=ARRAYFORMULA(A1:A10*B1:B10)", *update.Rows[0].Values[0].UserEnteredValue.FormulaValue)
}

func TestNamedRangeSpec_NameValidation(t *testing.T) {
	valid := []string{"Revenue", "_totals", "q3_budget", "Sales2024"}
	for _, name := range valid {
		assert.NoError(t, validateRangeName(name), "name %q", name)
	}

	invalid := []string{"", "3rdQuarter", "has space", "A1", "ZZ99", "R1C1", "RC", "total-sales"}
	for _, name := range invalid {
		err := validateRangeName(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, &ValidationError{Kind: ValidationBadName}), "name %q", name)
	}
}

func TestBuildNamedRangeRequests(t *testing.T) {
	add := &OperationSpec{NamedRange: &NamedRangeSpec{
		Action: NamedRangeAdd,
		Name:   "Revenue",
		Range:  mustRange(t, "Sheet1!B2:B100"),
	}}
	require.NoError(t, add.Validate())

	reqs, err := add.BuildRequests(staticResolver(6))
	require.NoError(t, err)
	require.NotNil(t, reqs[0].AddNamedRange)
	assert.Equal(t, "Revenue", reqs[0].AddNamedRange.NamedRange.Name)
	assert.Equal(t, int64(6), reqs[0].AddNamedRange.NamedRange.Range.SheetId)

	del := &OperationSpec{NamedRange: &NamedRangeSpec{
		Action:       NamedRangeDelete,
		NamedRangeID: "nr123",
	}}
	require.NoError(t, del.Validate())

	reqs, err = del.BuildRequests(staticResolver(0))
	require.NoError(t, err)
	require.NotNil(t, reqs[0].DeleteNamedRange)
	assert.Equal(t, "nr123", reqs[0].DeleteNamedRange.NamedRangeId)
}
