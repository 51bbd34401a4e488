package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sheets_v4 "google.golang.org/api/sheets/v4"
)

// Unbounded marks an open axis bound in a RangeAddress, matching the Sheets
// GridRange convention of omitting the index.
const Unbounded int64 = -1

// RangeAddress is a resolved A1 range with half-open (end-exclusive) bounds,
// the same convention the Sheets GridRange type uses. A single cell is a 1x1
// range; open column ranges like A:C leave the row bounds Unbounded.
type RangeAddress struct {
	Sheet    string
	StartRow int64
	EndRow   int64
	StartCol int64
	EndCol   int64
}

var endpointPattern = regexp.MustCompile(`^([A-Za-z]{1,3})?([0-9]+)?$`)

// ParseRange parses A1 notation into a RangeAddress. Supported forms:
// "Sheet1!A1:D10", "'My Sheet'!A1", "B3", "A:C", "2:5", "A1:B".
// Reversed ranges are rejected rather than normalized.
func ParseRange(text string) (RangeAddress, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "empty range")
	}

	sheet, ref, err := splitSheetRef(text)
	if err != nil {
		return RangeAddress{}, err
	}
	if ref == "" {
		return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "missing cell reference in %q", text)
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "too many ':' in %q", text)
	}

	startCols, startRow, err := parseEndpoint(parts[0])
	if err != nil {
		return RangeAddress{}, err
	}

	addr := RangeAddress{Sheet: sheet}

	if len(parts) == 1 {
		// Single cell: both axes must be present
		if startCols == "" || startRow == 0 {
			return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "%q is not a cell reference", parts[0])
		}
		col := columnIndex(startCols)
		addr.StartCol, addr.EndCol = col, col+1
		addr.StartRow, addr.EndRow = startRow-1, startRow
		return addr, nil
	}

	endCols, endRow, err := parseEndpoint(parts[1])
	if err != nil {
		return RangeAddress{}, err
	}

	// Column axis
	switch {
	case startCols != "" && endCols != "":
		start, end := columnIndex(startCols), columnIndex(endCols)
		if start > end {
			return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "reversed column order in %q", text)
		}
		addr.StartCol, addr.EndCol = start, end+1
	case startCols == "" && endCols == "":
		addr.StartCol, addr.EndCol = Unbounded, Unbounded
	default:
		return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "mixed column bounds in %q", text)
	}

	// Row axis
	switch {
	case startRow != 0 && endRow != 0:
		if startRow > endRow {
			return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "reversed row order in %q", text)
		}
		addr.StartRow, addr.EndRow = startRow-1, endRow
	case startRow != 0 && endRow == 0:
		// A1:B reads "from row 1 of A down the columns"
		addr.StartRow, addr.EndRow = startRow-1, Unbounded
	case startRow == 0 && endRow != 0:
		// A:B2 reads from the top of the columns
		addr.StartRow, addr.EndRow = 0, endRow
	default:
		addr.StartRow, addr.EndRow = Unbounded, Unbounded
	}

	if addr.StartCol == Unbounded && addr.StartRow == Unbounded {
		return RangeAddress{}, validationErrorf(ValidationMalformedRange, "range", "%q has no bounded axis", text)
	}

	return addr, nil
}

// splitSheetRef separates the optional sheet-name prefix from the cell
// reference, handling quoted names with doubled-quote escapes.
func splitSheetRef(text string) (sheet, ref string, err error) {
	if !strings.HasPrefix(text, "'") {
		if idx := strings.Index(text, "!"); idx >= 0 {
			if idx == 0 {
				return "", "", validationErrorf(ValidationMalformedRange, "range", "empty sheet name in %q", text)
			}
			return text[:idx], text[idx+1:], nil
		}
		return "", text, nil
	}

	// Quoted sheet name: scan for the closing quote, '' escapes a quote
	var name strings.Builder
	i := 1
	for i < len(text) {
		if text[i] != '\'' {
			name.WriteByte(text[i])
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == '\'' {
			name.WriteByte('\'')
			i += 2
			continue
		}
		// closing quote, must be followed by '!'
		if i+1 >= len(text) || text[i+1] != '!' {
			return "", "", validationErrorf(ValidationMalformedRange, "range", "expected '!' after quoted sheet name in %q", text)
		}
		return name.String(), text[i+2:], nil
	}
	return "", "", validationErrorf(ValidationMalformedRange, "range", "unterminated quoted sheet name in %q", text)
}

// parseEndpoint splits one endpoint like "B3", "B", or "3" into its column
// letters and 1-based row number (0 when absent).
func parseEndpoint(s string) (cols string, row int64, err error) {
	m := endpointPattern.FindStringSubmatch(s)
	if m == nil || s == "" {
		return "", 0, validationErrorf(ValidationMalformedRange, "range", "bad cell reference %q", s)
	}
	cols = strings.ToUpper(m[1])
	if m[2] != "" {
		row, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil || row == 0 {
			return "", 0, validationErrorf(ValidationMalformedRange, "range", "bad row number %q", m[2])
		}
	}
	return cols, row, nil
}

// columnIndex converts column letters to a 0-based index (A=0, Z=25, AA=26).
func columnIndex(letters string) int64 {
	var idx int64
	for _, c := range letters {
		idx = idx*26 + int64(c-'A'+1)
	}
	return idx - 1
}

// ColumnLetters converts a 0-based column index back to letters.
func ColumnLetters(index int64) string {
	var letters []byte
	n := index + 1
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

// CellA1 formats a 0-based (row, col) pair as an A1 cell reference.
func CellA1(row, col int64) string {
	return fmt.Sprintf("%s%d", ColumnLetters(col), row+1)
}

var plainSheetName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// String formats the address back to A1 notation. Parsing the result yields
// the same address for every resolvable input.
func (r RangeAddress) String() string {
	var ref string
	colsBounded := r.StartCol != Unbounded
	rowsBounded := r.StartRow != Unbounded && r.EndRow != Unbounded

	switch {
	case colsBounded && rowsBounded:
		if r.EndRow == r.StartRow+1 && r.EndCol == r.StartCol+1 {
			ref = CellA1(r.StartRow, r.StartCol)
		} else {
			ref = CellA1(r.StartRow, r.StartCol) + ":" + CellA1(r.EndRow-1, r.EndCol-1)
		}
	case colsBounded && r.StartRow != Unbounded && r.EndRow == Unbounded:
		ref = CellA1(r.StartRow, r.StartCol) + ":" + ColumnLetters(r.EndCol-1)
	case colsBounded:
		ref = ColumnLetters(r.StartCol) + ":" + ColumnLetters(r.EndCol-1)
	case rowsBounded:
		ref = fmt.Sprintf("%d:%d", r.StartRow+1, r.EndRow)
	default:
		ref = ""
	}

	if r.Sheet == "" {
		return ref
	}
	sheet := r.Sheet
	if !plainSheetName.MatchString(sheet) {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	if ref == "" {
		return sheet
	}
	return sheet + "!" + ref
}

// WithDefaultSheet fills in the sheet name when the parsed range carried none.
func (r RangeAddress) WithDefaultSheet(name string) RangeAddress {
	if r.Sheet == "" {
		r.Sheet = name
	}
	return r
}

// IsSingleCell reports whether the address spans exactly one cell.
func (r RangeAddress) IsSingleCell() bool {
	return r.StartRow != Unbounded && r.StartCol != Unbounded &&
		r.EndRow == r.StartRow+1 && r.EndCol == r.StartCol+1
}

// spansMultipleCells reports whether the address covers two or more cells.
// An unbounded axis always spans multiple cells.
func (r RangeAddress) spansMultipleCells() bool {
	if r.StartRow == Unbounded || r.StartCol == Unbounded {
		return true
	}
	return (r.EndRow-r.StartRow)*(r.EndCol-r.StartCol) >= 2
}

// GridRange converts the address to the API's GridRange for the given sheet.
// Unbounded axes leave their indices unset; zero-valued bounds are forced
// onto the wire so the API does not misread them as unset.
func (r RangeAddress) GridRange(sheetID int64) *sheets_v4.GridRange {
	gr := &sheets_v4.GridRange{
		SheetId:         sheetID,
		ForceSendFields: []string{"SheetId"},
	}
	if r.StartRow != Unbounded {
		gr.StartRowIndex = r.StartRow
		gr.ForceSendFields = append(gr.ForceSendFields, "StartRowIndex")
	}
	if r.EndRow != Unbounded {
		gr.EndRowIndex = r.EndRow
		gr.ForceSendFields = append(gr.ForceSendFields, "EndRowIndex")
	}
	if r.StartCol != Unbounded {
		gr.StartColumnIndex = r.StartCol
		gr.ForceSendFields = append(gr.ForceSendFields, "StartColumnIndex")
	}
	if r.EndCol != Unbounded {
		gr.EndColumnIndex = r.EndCol
		gr.ForceSendFields = append(gr.ForceSendFields, "EndColumnIndex")
	}
	return gr
}
