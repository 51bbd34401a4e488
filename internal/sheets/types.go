package sheets

import "time"

// Value input and render options accepted by the values API.
const (
	InputRaw         = "RAW"
	InputUserEntered = "USER_ENTERED"

	RenderFormattedValue   = "FORMATTED_VALUE"
	RenderUnformattedValue = "UNFORMATTED_VALUE"
	RenderFormula          = "FORMULA"

	InsertRows = "INSERT_ROWS"
	Overwrite  = "OVERWRITE"
)

// SpreadsheetMimeType is the Drive MIME type identifying spreadsheets.
const SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// ValueGrid holds the values read from a range. Trailing short rows are
// padded so every row has the same width.
type ValueGrid struct {
	// Range is the A1 range the API actually resolved
	Range string `json:"range"`

	// Values is the 2D array of cell values
	Values [][]interface{} `json:"values"`
}

// UpdateResult summarizes a values write.
type UpdateResult struct {
	// UpdatedRange is the A1 range that was written
	UpdatedRange string `json:"updatedRange"`

	// UpdatedRows is the number of rows affected
	UpdatedRows int64 `json:"updatedRows"`

	// UpdatedColumns is the number of columns affected
	UpdatedColumns int64 `json:"updatedColumns"`

	// UpdatedCells is the number of cells affected
	UpdatedCells int64 `json:"updatedCells"`
}

// SheetInfo describes one worksheet inside a spreadsheet.
type SheetInfo struct {
	// ID is the numeric sheet ID used by structural requests
	ID int64 `json:"id"`

	// Title is the sheet name as shown on the tab
	Title string `json:"title"`

	// Index is the zero-based tab position
	Index int64 `json:"index"`

	// RowCount and ColumnCount are the grid dimensions
	RowCount    int64 `json:"rowCount"`
	ColumnCount int64 `json:"columnCount"`
}

// SpreadsheetInfo describes a spreadsheet and its worksheets.
type SpreadsheetInfo struct {
	// ID is the spreadsheet ID from the document URL
	ID string `json:"id"`

	// Title is the document title
	Title string `json:"title"`

	// URL is the browser link to the document
	URL string `json:"url,omitempty"`

	// Sheets lists the worksheets in tab order
	Sheets []SheetInfo `json:"sheets,omitempty"`
}

// NamedRangeInfo describes a named range defined in a spreadsheet.
type NamedRangeInfo struct {
	// ID is the named range ID used by deleteNamedRange
	ID string `json:"id"`

	// Name is the identifier usable in formulas
	Name string `json:"name"`

	// Range is the A1 rendering of the target range
	Range string `json:"range"`
}

// ChartInfo describes an embedded chart as read back from a spreadsheet.
type ChartInfo struct {
	// ChartID is the chart's ID, unique within the spreadsheet
	ChartID int64 `json:"chartId"`

	// SheetID and SheetTitle identify the worksheet holding the chart
	SheetID    int64  `json:"sheetId"`
	SheetTitle string `json:"sheetTitle,omitempty"`

	// ChartType is the API chart type, e.g. LINE or PIE
	ChartType string `json:"chartType"`

	// Title and Subtitle are the chart headings
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	// DataRanges lists the A1 source ranges feeding the chart series
	DataRanges []string `json:"dataRanges,omitempty"`

	// AnchorCell is the cell the chart's top-left corner is anchored to
	AnchorCell string `json:"anchorCell,omitempty"`

	// Width and Height are the rendered size in pixels
	Width  int64 `json:"width,omitempty"`
	Height int64 `json:"height,omitempty"`
}

// SpreadsheetRef is a Drive listing entry for a spreadsheet file.
type SpreadsheetRef struct {
	// ID is the spreadsheet ID
	ID string `json:"id"`

	// Name is the file name in Drive
	Name string `json:"name"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime,omitempty"`

	// URL is the browser link to the document
	URL string `json:"url,omitempty"`
}
