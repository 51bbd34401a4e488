package sheets

import (
	"strings"

	sheets_v4 "google.golang.org/api/sheets/v4"
)

// Default overlay size for newly created charts, in pixels.
const (
	defaultChartWidth  = 600
	defaultChartHeight = 400
)

// SheetResolver maps a sheet name to its numeric sheet ID. An empty name
// resolves to the spreadsheet's default (first) sheet.
type SheetResolver func(sheetName string) (int64, error)

// BuildRequests translates a validated spec into batchUpdate requests.
// A plain (non-array) formula produces no requests; the dispatcher routes
// it through the values API instead.
func (s *OperationSpec) BuildRequests(resolve SheetResolver) ([]*sheets_v4.Request, error) {
	switch {
	case s.Format != nil:
		req, err := buildFormatRequest(s.Format, resolve)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{req}, nil
	case s.ConditionalFormat != nil:
		req, err := buildConditionalFormatRequest(s.ConditionalFormat, resolve)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{req}, nil
	case s.Merge != nil:
		sheetID, err := resolve(s.Merge.Range.Sheet)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{{
			MergeCells: &sheets_v4.MergeCellsRequest{
				Range:     s.Merge.Range.GridRange(sheetID),
				MergeType: s.Merge.MergeType,
			},
		}}, nil
	case s.Chart != nil:
		req, err := buildChartRequest(s.Chart, resolve)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{req}, nil
	case s.Formula != nil:
		if !s.Formula.Array {
			return nil, nil
		}
		req, err := buildArrayFormulaRequest(s.Formula, resolve)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{req}, nil
	case s.NamedRange != nil:
		req, err := buildNamedRangeRequest(s.NamedRange, resolve)
		if err != nil {
			return nil, err
		}
		return []*sheets_v4.Request{req}, nil
	default:
		return nil, validationErrorf(ValidationBadValue, "operation", "no operation specified")
	}
}

// ValuesOperation returns the formula spec when this operation goes through
// the values API rather than batchUpdate, else nil.
func (s *OperationSpec) ValuesOperation() *FormulaSpec {
	if s.Formula != nil && !s.Formula.Array {
		return s.Formula
	}
	return nil
}

// cellFormat assembles the userEnteredFormat and the matching field mask,
// listing exactly the fields the spec sets.
func cellFormat(f *FormatSpec) (*sheets_v4.CellFormat, string) {
	format := &sheets_v4.CellFormat{}
	var fields []string

	if f.BackgroundColor != nil {
		format.BackgroundColor = f.BackgroundColor
		fields = append(fields, "backgroundColor")
	}
	if f.hasTextFormat() {
		tf := &sheets_v4.TextFormat{}
		if f.Bold != nil {
			tf.Bold = *f.Bold
			tf.ForceSendFields = append(tf.ForceSendFields, "Bold")
		}
		if f.Italic != nil {
			tf.Italic = *f.Italic
			tf.ForceSendFields = append(tf.ForceSendFields, "Italic")
		}
		if f.Underline != nil {
			tf.Underline = *f.Underline
			tf.ForceSendFields = append(tf.ForceSendFields, "Underline")
		}
		if f.Strikethrough != nil {
			tf.Strikethrough = *f.Strikethrough
			tf.ForceSendFields = append(tf.ForceSendFields, "Strikethrough")
		}
		if f.FontFamily != "" {
			tf.FontFamily = f.FontFamily
		}
		if f.FontSize > 0 {
			tf.FontSize = f.FontSize
		}
		if f.TextColor != nil {
			tf.ForegroundColor = f.TextColor
		}
		format.TextFormat = tf
		fields = append(fields, "textFormat")
	}
	if f.HorizontalAlignment != "" {
		format.HorizontalAlignment = f.HorizontalAlignment
		fields = append(fields, "horizontalAlignment")
	}
	if f.VerticalAlignment != "" {
		format.VerticalAlignment = f.VerticalAlignment
		fields = append(fields, "verticalAlignment")
	}
	if f.WrapStrategy != "" {
		format.WrapStrategy = f.WrapStrategy
		fields = append(fields, "wrapStrategy")
	}
	if f.NumberFormatPattern != "" {
		format.NumberFormat = &sheets_v4.NumberFormat{
			Type:    NumberFormatTypeForPattern(f.NumberFormatPattern),
			Pattern: f.NumberFormatPattern,
		}
		fields = append(fields, "numberFormat")
	}

	return format, "userEnteredFormat(" + strings.Join(fields, ",") + ")"
}

func buildFormatRequest(f *FormatSpec, resolve SheetResolver) (*sheets_v4.Request, error) {
	sheetID, err := resolve(f.Range.Sheet)
	if err != nil {
		return nil, err
	}
	format, fieldMask := cellFormat(f)
	return &sheets_v4.Request{
		RepeatCell: &sheets_v4.RepeatCellRequest{
			Range:  f.Range.GridRange(sheetID),
			Cell:   &sheets_v4.CellData{UserEnteredFormat: format},
			Fields: fieldMask,
		},
	}, nil
}

func buildConditionalFormatRequest(c *ConditionalFormatSpec, resolve SheetResolver) (*sheets_v4.Request, error) {
	sheetID, err := resolve(c.Range.Sheet)
	if err != nil {
		return nil, err
	}

	rule := &sheets_v4.ConditionalFormatRule{
		Ranges: []*sheets_v4.GridRange{c.Range.GridRange(sheetID)},
	}

	if len(c.Gradient) > 0 {
		gradient := &sheets_v4.GradientRule{}
		points := make([]*sheets_v4.InterpolationPoint, len(c.Gradient))
		for i, p := range c.Gradient {
			points[i] = &sheets_v4.InterpolationPoint{
				Color: p.Color,
				Type:  p.Type,
				Value: p.Value,
			}
		}
		gradient.Minpoint = points[0]
		if len(points) == 3 {
			gradient.Midpoint = points[1]
			gradient.Maxpoint = points[2]
		} else {
			gradient.Maxpoint = points[1]
		}
		rule.GradientRule = gradient
	} else {
		var values []*sheets_v4.ConditionValue
		for _, v := range c.ConditionValues {
			values = append(values, &sheets_v4.ConditionValue{UserEnteredValue: v})
		}
		style := &sheets_v4.CellFormat{}
		if c.BackgroundColor != nil {
			style.BackgroundColor = c.BackgroundColor
		}
		if c.TextColor != nil || c.Bold != nil || c.Italic != nil {
			tf := &sheets_v4.TextFormat{ForegroundColor: c.TextColor}
			if c.Bold != nil {
				tf.Bold = *c.Bold
				tf.ForceSendFields = append(tf.ForceSendFields, "Bold")
			}
			if c.Italic != nil {
				tf.Italic = *c.Italic
				tf.ForceSendFields = append(tf.ForceSendFields, "Italic")
			}
			style.TextFormat = tf
		}
		rule.BooleanRule = &sheets_v4.BooleanRule{
			Condition: &sheets_v4.BooleanCondition{
				Type:   c.ConditionType,
				Values: values,
			},
			Format: style,
		}
	}

	return &sheets_v4.Request{
		AddConditionalFormatRule: &sheets_v4.AddConditionalFormatRuleRequest{
			Rule:            rule,
			Index:           0,
			ForceSendFields: []string{"Index"},
		},
	}, nil
}

// legendEnum maps the short legend position names to the API enum values.
func legendEnum(position string) string {
	switch position {
	case "":
		return "BOTTOM_LEGEND"
	case "NONE":
		return "NO_LEGEND"
	default:
		return position + "_LEGEND"
	}
}

func buildChartSpec(c *ChartSpec, sheetID int64) *sheets_v4.ChartSpec {
	sourceRange := &sheets_v4.ChartSourceRange{
		Sources: []*sheets_v4.GridRange{c.DataRange.GridRange(sheetID)},
	}
	spec := &sheets_v4.ChartSpec{
		Title:    c.Title,
		Subtitle: c.Subtitle,
	}

	if c.ChartType == "PIE" {
		spec.PieChart = &sheets_v4.PieChartSpec{
			LegendPosition: legendEnum(c.LegendPosition),
			Domain:         &sheets_v4.ChartData{SourceRange: sourceRange},
			Series:         &sheets_v4.ChartData{SourceRange: sourceRange},
			PieHole:        c.PieHole,
		}
		return spec
	}

	spec.BasicChart = &sheets_v4.BasicChartSpec{
		ChartType:      c.ChartType,
		LegendPosition: legendEnum(c.LegendPosition),
		HeaderCount:    1,
		Axis: []*sheets_v4.BasicChartAxis{
			{Position: "BOTTOM_AXIS"},
			{Position: "LEFT_AXIS"},
		},
		Domains: []*sheets_v4.BasicChartDomain{
			{Domain: &sheets_v4.ChartData{SourceRange: sourceRange}},
		},
		Series: []*sheets_v4.BasicChartSeries{
			{Series: &sheets_v4.ChartData{SourceRange: sourceRange}, TargetAxis: "LEFT_AXIS"},
		},
	}
	return spec
}

func buildChartPosition(c *ChartSpec, resolve SheetResolver) (*sheets_v4.EmbeddedObjectPosition, error) {
	anchor := c.Anchor
	if anchor == nil {
		// Default anchor: just right of the data
		a := RangeAddress{
			Sheet:    c.DataRange.Sheet,
			StartRow: max(c.DataRange.StartRow, 0),
			StartCol: c.DataRange.EndCol + 1,
		}
		if a.StartCol == Unbounded+1 {
			a.StartCol = 0
		}
		anchor = &a
	}
	sheetID, err := resolve(anchor.Sheet)
	if err != nil {
		return nil, err
	}

	width := c.WidthPixels
	if width == 0 {
		width = defaultChartWidth
	}
	height := c.HeightPixels
	if height == 0 {
		height = defaultChartHeight
	}

	return &sheets_v4.EmbeddedObjectPosition{
		OverlayPosition: &sheets_v4.OverlayPosition{
			AnchorCell: &sheets_v4.GridCoordinate{
				SheetId:         sheetID,
				RowIndex:        max(anchor.StartRow, 0),
				ColumnIndex:     max(anchor.StartCol, 0),
				ForceSendFields: []string{"SheetId", "RowIndex", "ColumnIndex"},
			},
			OffsetXPixels: c.OffsetXPixels,
			OffsetYPixels: c.OffsetYPixels,
			WidthPixels:   width,
			HeightPixels:  height,
		},
	}, nil
}

func buildChartRequest(c *ChartSpec, resolve SheetResolver) (*sheets_v4.Request, error) {
	if c.RepositionOnly {
		position, err := buildChartPosition(c, resolve)
		if err != nil {
			return nil, err
		}
		return &sheets_v4.Request{
			UpdateEmbeddedObjectPosition: &sheets_v4.UpdateEmbeddedObjectPositionRequest{
				ObjectId:    c.ChartID,
				NewPosition: position,
				Fields:      "*",
			},
		}, nil
	}

	sheetID, err := resolve(c.DataRange.Sheet)
	if err != nil {
		return nil, err
	}
	spec := buildChartSpec(c, sheetID)

	if c.ChartID != 0 {
		return &sheets_v4.Request{
			UpdateChartSpec: &sheets_v4.UpdateChartSpecRequest{
				ChartId: c.ChartID,
				Spec:    spec,
			},
		}, nil
	}

	position, err := buildChartPosition(c, resolve)
	if err != nil {
		return nil, err
	}
	return &sheets_v4.Request{
		AddChart: &sheets_v4.AddChartRequest{
			Chart: &sheets_v4.EmbeddedChart{
				Spec:     spec,
				Position: position,
			},
		},
	}, nil
}

// buildArrayFormulaRequest writes the formula into the anchor cell of the
// range via updateCells; the array formula spills from there.
func buildArrayFormulaRequest(f *FormulaSpec, resolve SheetResolver) (*sheets_v4.Request, error) {
	sheetID, err := resolve(f.Range.Sheet)
	if err != nil {
		return nil, err
	}
	anchor := RangeAddress{
		Sheet:    f.Range.Sheet,
		StartRow: max(f.Range.StartRow, 0),
		StartCol: max(f.Range.StartCol, 0),
	}
	anchor.EndRow = anchor.StartRow + 1
	anchor.EndCol = anchor.StartCol + 1

	formula := f.NormalizedFormula()
	return &sheets_v4.Request{
		UpdateCells: &sheets_v4.UpdateCellsRequest{
			Range: anchor.GridRange(sheetID),
			Rows: []*sheets_v4.RowData{{
				Values: []*sheets_v4.CellData{{
					UserEnteredValue: &sheets_v4.ExtendedValue{
						FormulaValue: &formula,
					},
				}},
			}},
			Fields: "userEnteredValue",
		},
	}, nil
}

func buildNamedRangeRequest(n *NamedRangeSpec, resolve SheetResolver) (*sheets_v4.Request, error) {
	switch n.Action {
	case NamedRangeAdd:
		sheetID, err := resolve(n.Range.Sheet)
		if err != nil {
			return nil, err
		}
		return &sheets_v4.Request{
			AddNamedRange: &sheets_v4.AddNamedRangeRequest{
				NamedRange: &sheets_v4.NamedRange{
					Name:  n.Name,
					Range: n.Range.GridRange(sheetID),
				},
			},
		}, nil
	case NamedRangeDelete:
		return &sheets_v4.Request{
			DeleteNamedRange: &sheets_v4.DeleteNamedRangeRequest{
				NamedRangeId: n.NamedRangeID,
			},
		}, nil
	default:
		return nil, validationErrorf(ValidationInvalidEnum, "action", "unsupported action %q", n.Action)
	}
}
