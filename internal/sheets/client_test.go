package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_WriteThenReadRoundTrip(t *testing.T) {
	client, fake := newFakeClient(t)
	ctx := context.Background()

	values := [][]interface{}{
		{"name", "count"},
		{"alpha", "3"},
	}

	update, err := client.WriteRange(ctx, "ss1", "Sheet1!A1:B2", values, InputRaw)
	require.NoError(t, err)
	assert.Equal(t, int64(2), update.UpdatedRows)
	assert.Equal(t, int64(2), update.UpdatedColumns)
	assert.Equal(t, "RAW", fake.lastValueInput)

	grid, err := client.ReadRange(ctx, "ss1", "Sheet1!A1:B2", "")
	require.NoError(t, err)
	assert.Equal(t, values, grid.Values)
}

func TestClient_ReadRange_PadsRaggedRows(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.values["Sheet1!A1:B2"] = [][]interface{}{
		{"a"},
		{"b", "c"},
	}

	grid, err := client.ReadRange(context.Background(), "ss1", "Sheet1!A1:B2", RenderUnformattedValue)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{"a", ""},
		{"b", "c"},
	}, grid.Values)
}

func TestClient_GetSpreadsheetInfo(t *testing.T) {
	client, _ := newFakeClient(t)

	info, err := client.GetSpreadsheetInfo(context.Background(), "ss1")
	require.NoError(t, err)
	assert.Equal(t, "ss1", info.ID)
	assert.Equal(t, "Test Book", info.Title)
	require.Len(t, info.Sheets, 2)
	assert.Equal(t, int64(11), info.Sheets[0].ID)
	assert.Equal(t, "Sheet1", info.Sheets[0].Title)
	assert.Equal(t, int64(100), info.Sheets[0].RowCount)

	_, err = client.GetSpreadsheetInfo(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_SheetResolverFor(t *testing.T) {
	client, fake := newFakeClient(t)

	resolve, err := client.SheetResolverFor(context.Background(), "ss1")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.metadataCalls)

	id, err := resolve("Data")
	require.NoError(t, err)
	assert.Equal(t, int64(22), id)

	// Empty name means the first sheet.
	id, err = resolve("")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	_, err = resolve("Nope")
	require.Error(t, err)

	// Resolution reuses the single metadata read.
	assert.Equal(t, 1, fake.metadataCalls)
}

func TestClient_ListNamedRanges(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.namedRanges = []map[string]interface{}{
		{"namedRangeId": "nr-1", "name": "Revenue", "range": map[string]interface{}{
			"sheetId": 11, "startRowIndex": 1, "endRowIndex": 100,
			"startColumnIndex": 1, "endColumnIndex": 2,
		}},
	}

	infos, err := client.ListNamedRanges(context.Background(), "ss1")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "nr-1", infos[0].ID)
	assert.Equal(t, "Revenue", infos[0].Name)
	assert.Equal(t, "Sheet1!B2:B100", infos[0].Range)
}

func TestClient_GetChartInfo(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.charts = []map[string]interface{}{{
		"chartId": 42,
		"spec": map[string]interface{}{
			"title": "Revenue by month",
			"basicChart": map[string]interface{}{
				"chartType": "LINE",
				"series": []map[string]interface{}{
					{"series": map[string]interface{}{"sourceRange": map[string]interface{}{
						"sources": []map[string]interface{}{{
							"sheetId": 11, "startRowIndex": 0, "endRowIndex": 10,
							"startColumnIndex": 1, "endColumnIndex": 2,
						}},
					}}},
				},
			},
		},
		"position": map[string]interface{}{"overlayPosition": map[string]interface{}{
			"anchorCell":  map[string]interface{}{"sheetId": 11, "rowIndex": 1, "columnIndex": 4},
			"widthPixels": 600, "heightPixels": 371,
		}},
	}}

	info, err := client.GetChartInfo(context.Background(), "ss1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.ChartID)
	assert.Equal(t, int64(11), info.SheetID)
	assert.Equal(t, "Sheet1", info.SheetTitle)
	assert.Equal(t, "LINE", info.ChartType)
	assert.Equal(t, "Revenue by month", info.Title)
	assert.Equal(t, []string{"Sheet1!B1:B10"}, info.DataRanges)
	assert.Equal(t, "Sheet1!E2", info.AnchorCell)
	assert.Equal(t, int64(600), info.Width)
	assert.Equal(t, int64(371), info.Height)

	_, err = client.GetChartInfo(context.Background(), "ss1", 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart 99 not found")
}

func TestClient_ClearRange(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.values["Sheet1!A1:B2"] = [][]interface{}{{"x"}}

	// The fake routes :clear through the values handler as a POST, which
	// overwrites with the empty body. Verify the call shape only.
	_, err := client.ClearRange(context.Background(), "ss1", "Sheet1!A1:B2")
	require.NoError(t, err)
}
