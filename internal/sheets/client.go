package sheets

import (
	"context"
	"fmt"
	"time"

	drive_v3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/teemow/sheetsmcp/internal/google"
)

// Client wraps the Google Sheets and Drive API services for one account.
type Client struct {
	sheets  *sheets_v4.Service
	drive   *drive_v3.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Sheets client with OAuth2 authentication for
// a specific account. Returns an error if no stored credential exists; use
// google.HasTokenForAccount() to check first.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	sheetsService, err := sheets_v4.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	driveService, err := drive_v3.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		sheets:  sheetsService,
		drive:   driveService,
		account: account,
	}, nil
}

// NewClient creates a Sheets client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// NewClientWithServices builds a client around existing services. Used by
// tests that point the services at a fake API server.
func NewClientWithServices(sheetsService *sheets_v4.Service, driveService *drive_v3.Service, account string) *Client {
	return &Client{sheets: sheetsService, drive: driveService, account: account}
}

// ReadRange reads values from an A1 range. renderOption defaults to
// FORMATTED_VALUE when empty.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, a1Range, renderOption string) (*ValueGrid, error) {
	if renderOption == "" {
		renderOption = RenderFormattedValue
	}

	resp, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, a1Range).
		ValueRenderOption(renderOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, err)
	}

	return &ValueGrid{
		Range:  resp.Range,
		Values: padRows(resp.Values),
	}, nil
}

// WriteRange writes a 2D array of values to an A1 range.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}, inputOption string) (*UpdateResult, error) {
	if inputOption == "" {
		inputOption = InputUserEntered
	}

	resp, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, a1Range, &sheets_v4.ValueRange{
		Range:  a1Range,
		Values: values,
	}).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write range %s: %w", a1Range, err)
	}

	return &UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// AppendRows appends rows after the last row of data overlapping the range.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}, inputOption string) (*UpdateResult, error) {
	if inputOption == "" {
		inputOption = InputUserEntered
	}

	resp, err := c.sheets.Spreadsheets.Values.Append(spreadsheetID, a1Range, &sheets_v4.ValueRange{
		Values: values,
	}).
		ValueInputOption(inputOption).
		InsertDataOption(InsertRows).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append to range %s: %w", a1Range, err)
	}

	result := &UpdateResult{}
	if resp.Updates != nil {
		result.UpdatedRange = resp.Updates.UpdatedRange
		result.UpdatedRows = resp.Updates.UpdatedRows
		result.UpdatedColumns = resp.Updates.UpdatedColumns
		result.UpdatedCells = resp.Updates.UpdatedCells
	}
	return result, nil
}

// ClearRange clears values (not formatting) from an A1 range.
func (c *Client) ClearRange(ctx context.Context, spreadsheetID, a1Range string) (string, error) {
	resp, err := c.sheets.Spreadsheets.Values.Clear(spreadsheetID, a1Range, &sheets_v4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear range %s: %w", a1Range, err)
	}
	return resp.ClearedRange, nil
}

// CreateSpreadsheet creates a new spreadsheet with the given title.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, validationErrorf(ValidationBadValue, "title", "title is required")
	}

	resp, err := c.sheets.Spreadsheets.Create(&sheets_v4.Spreadsheet{
		Properties: &sheets_v4.SpreadsheetProperties{Title: title},
	}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	return convertToSpreadsheetInfo(resp), nil
}

// GetSpreadsheetInfo fetches spreadsheet metadata including its worksheets.
func (c *Client) GetSpreadsheetInfo(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	if spreadsheetID == "" {
		return nil, validationErrorf(ValidationBadValue, "spreadsheet_id", "spreadsheet ID is required")
	}

	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId,spreadsheetUrl,properties.title,sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	return convertToSpreadsheetInfo(resp), nil
}

// AddWorksheet adds a worksheet to an existing spreadsheet.
func (c *Client) AddWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) (*SheetInfo, error) {
	if title == "" {
		return nil, validationErrorf(ValidationBadValue, "title", "title is required")
	}
	if rows <= 0 {
		rows = 1000
	}
	if cols <= 0 {
		cols = 26
	}

	resp, err := c.BatchUpdate(ctx, spreadsheetID, []*sheets_v4.Request{{
		AddSheet: &sheets_v4.AddSheetRequest{
			Properties: &sheets_v4.SheetProperties{
				Title: title,
				GridProperties: &sheets_v4.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
		},
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet %s: %w", title, err)
	}

	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			p := reply.AddSheet.Properties
			info := &SheetInfo{ID: p.SheetId, Title: p.Title, Index: p.Index}
			if p.GridProperties != nil {
				info.RowCount = p.GridProperties.RowCount
				info.ColumnCount = p.GridProperties.ColumnCount
			}
			return info, nil
		}
	}
	return &SheetInfo{Title: title}, nil
}

// ListSpreadsheets lists spreadsheet files visible to the account via Drive.
func (c *Client) ListSpreadsheets(ctx context.Context, maxResults int64) ([]*SpreadsheetRef, error) {
	if maxResults <= 0 || maxResults > 1000 {
		maxResults = 100
	}

	fileList, err := c.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)).
		PageSize(maxResults).
		OrderBy("modifiedTime desc").
		Fields("files(id, name, modifiedTime, webViewLink)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}

	refs := make([]*SpreadsheetRef, len(fileList.Files))
	for i, f := range fileList.Files {
		ref := &SpreadsheetRef{ID: f.Id, Name: f.Name, URL: f.WebViewLink}
		if f.ModifiedTime != "" {
			if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
				ref.ModifiedTime = t
			}
		}
		refs[i] = ref
	}
	return refs, nil
}

// ListNamedRanges lists the named ranges defined in a spreadsheet.
func (c *Client) ListNamedRanges(ctx context.Context, spreadsheetID string) ([]*NamedRangeInfo, error) {
	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("namedRanges,sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list named ranges: %w", err)
	}

	sheetNames := make(map[int64]string)
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			sheetNames[sh.Properties.SheetId] = sh.Properties.Title
		}
	}

	infos := make([]*NamedRangeInfo, len(resp.NamedRanges))
	for i, nr := range resp.NamedRanges {
		info := &NamedRangeInfo{ID: nr.NamedRangeId, Name: nr.Name}
		if nr.Range != nil {
			addr := rangeAddressFromGrid(nr.Range, sheetNames[nr.Range.SheetId])
			info.Range = addr.String()
		}
		infos[i] = info
	}
	return infos, nil
}

// GetChartInfo looks up an embedded chart by ID and reports its type, data
// sources, and position. Chart IDs are unique within a spreadsheet, so no
// sheet needs to be named.
func (c *Client) GetChartInfo(ctx context.Context, spreadsheetID string, chartID int64) (*ChartInfo, error) {
	resp, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title),sheets.charts").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get charts for spreadsheet %s: %w", spreadsheetID, err)
	}

	sheetNames := make(map[int64]string)
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			sheetNames[sh.Properties.SheetId] = sh.Properties.Title
		}
	}

	for _, sh := range resp.Sheets {
		for _, chart := range sh.Charts {
			if chart.ChartId != chartID {
				continue
			}
			info := &ChartInfo{ChartID: chartID}
			if sh.Properties != nil {
				info.SheetID = sh.Properties.SheetId
				info.SheetTitle = sh.Properties.Title
			}
			fillChartSpec(info, chart.Spec, sheetNames)
			fillChartPosition(info, chart.Position, sheetNames)
			return info, nil
		}
	}
	return nil, validationErrorf(ValidationBadValue, "chart_id",
		"chart %d not found in spreadsheet %s", chartID, spreadsheetID)
}

// BatchUpdate sends structural requests in a single atomic batchUpdate call.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets_v4.Request) (*sheets_v4.BatchUpdateSpreadsheetResponse, error) {
	return c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets_v4.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).
		Context(ctx).
		Do()
}

// SheetResolverFor fetches the spreadsheet's sheet list once and returns a
// resolver mapping sheet names to IDs. The empty name resolves to the first
// sheet.
func (c *Client) SheetResolverFor(ctx context.Context, spreadsheetID string) (SheetResolver, error) {
	info, err := c.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	if len(info.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}

	byName := make(map[string]int64, len(info.Sheets))
	for _, sh := range info.Sheets {
		byName[sh.Title] = sh.ID
	}
	first := info.Sheets[0].ID

	return func(name string) (int64, error) {
		if name == "" {
			return first, nil
		}
		id, ok := byName[name]
		if !ok {
			return 0, validationErrorf(ValidationMalformedRange, "range", "unknown sheet %q", name)
		}
		return id, nil
	}, nil
}

// rangeAddressFromGrid converts an API GridRange back to a RangeAddress.
func rangeAddressFromGrid(gr *sheets_v4.GridRange, sheetName string) RangeAddress {
	addr := RangeAddress{
		Sheet:    sheetName,
		StartRow: Unbounded,
		EndRow:   Unbounded,
		StartCol: Unbounded,
		EndCol:   Unbounded,
	}
	// GridRange cannot distinguish "unset" zero bounds from explicit zeros;
	// treat zero starts as bounded, which matches how the API echoes ranges.
	addr.StartRow = gr.StartRowIndex
	addr.StartCol = gr.StartColumnIndex
	if gr.EndRowIndex > 0 {
		addr.EndRow = gr.EndRowIndex
	}
	if gr.EndColumnIndex > 0 {
		addr.EndCol = gr.EndColumnIndex
	}
	return addr
}

// fillChartSpec copies the chart type, headings, and series source ranges
// into the info. Unrecognized chart kinds report UNKNOWN rather than failing.
func fillChartSpec(info *ChartInfo, spec *sheets_v4.ChartSpec, sheetNames map[int64]string) {
	if spec == nil {
		info.ChartType = "UNKNOWN"
		return
	}
	info.Title = spec.Title
	info.Subtitle = spec.Subtitle

	switch {
	case spec.BasicChart != nil:
		info.ChartType = spec.BasicChart.ChartType
		for _, series := range spec.BasicChart.Series {
			info.DataRanges = append(info.DataRanges, sourceRangeStrings(series.Series, sheetNames)...)
		}
	case spec.PieChart != nil:
		info.ChartType = "PIE"
		info.DataRanges = sourceRangeStrings(spec.PieChart.Series, sheetNames)
	default:
		info.ChartType = "UNKNOWN"
	}
}

// sourceRangeStrings renders a chart series' source grid ranges in A1 form.
func sourceRangeStrings(data *sheets_v4.ChartData, sheetNames map[int64]string) []string {
	if data == nil || data.SourceRange == nil {
		return nil
	}
	ranges := make([]string, 0, len(data.SourceRange.Sources))
	for _, gr := range data.SourceRange.Sources {
		if gr == nil {
			continue
		}
		addr := rangeAddressFromGrid(gr, sheetNames[gr.SheetId])
		ranges = append(ranges, addr.String())
	}
	return ranges
}

func fillChartPosition(info *ChartInfo, pos *sheets_v4.EmbeddedObjectPosition, sheetNames map[int64]string) {
	if pos == nil || pos.OverlayPosition == nil {
		return
	}
	op := pos.OverlayPosition
	info.Width = op.WidthPixels
	info.Height = op.HeightPixels
	if anchor := op.AnchorCell; anchor != nil {
		addr := RangeAddress{
			Sheet:    sheetNames[anchor.SheetId],
			StartRow: anchor.RowIndex,
			EndRow:   anchor.RowIndex + 1,
			StartCol: anchor.ColumnIndex,
			EndCol:   anchor.ColumnIndex + 1,
		}
		info.AnchorCell = addr.String()
	}
}

// padRows pads short rows so every row of the grid has the same width.
func padRows(values [][]interface{}) [][]interface{} {
	maxCols := 0
	for _, row := range values {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	for i, row := range values {
		for len(row) < maxCols {
			row = append(row, "")
		}
		values[i] = row
	}
	return values
}

func convertToSpreadsheetInfo(s *sheets_v4.Spreadsheet) *SpreadsheetInfo {
	info := &SpreadsheetInfo{
		ID:  s.SpreadsheetId,
		URL: s.SpreadsheetUrl,
	}
	if s.Properties != nil {
		info.Title = s.Properties.Title
	}
	for _, sh := range s.Sheets {
		if sh.Properties == nil {
			continue
		}
		p := sh.Properties
		si := SheetInfo{ID: p.SheetId, Title: p.Title, Index: p.Index}
		if p.GridProperties != nil {
			si.RowCount = p.GridProperties.RowCount
			si.ColumnCount = p.GridProperties.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info
}
