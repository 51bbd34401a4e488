package cmd

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/sheetsmcp/internal/server"
)

func registeredToolNames(t *testing.T, readOnly bool) map[string]bool {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv := mcpserver.NewMCPServer("sheetsmcp-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		t.Fatalf("registerAllTools() error = %v", err)
	}

	names := make(map[string]bool)
	for _, serverTool := range mcpSrv.ListTools() {
		names[serverTool.Tool.Name] = true
	}
	return names
}

func TestRegisterAllTools_ReadOnlyMode(t *testing.T) {
	names := registeredToolNames(t, true)

	for _, want := range []string{
		"google_get_auth_url",
		"google_save_auth_code",
		"sheets_read_range",
		"sheets_get_info",
		"sheets_list_spreadsheets",
		"sheets_list_named_ranges",
	} {
		if !names[want] {
			t.Errorf("read-only mode missing tool %q", want)
		}
	}

	for _, absent := range []string{
		"sheets_write_range",
		"sheets_batch_update",
		"sheets_format_cells",
		"sheets_create_chart",
		"sheets_apply_formula",
		"sheets_create_named_range",
	} {
		if names[absent] {
			t.Errorf("read-only mode must not register %q", absent)
		}
	}
}

func TestRegisterAllTools_WriteMode(t *testing.T) {
	readOnlyNames := registeredToolNames(t, true)
	writeNames := registeredToolNames(t, false)

	if len(writeNames) <= len(readOnlyNames) {
		t.Errorf("write mode registered %d tools, want more than read-only's %d",
			len(writeNames), len(readOnlyNames))
	}

	for _, want := range []string{
		"sheets_write_range",
		"sheets_append_rows",
		"sheets_clear_range",
		"sheets_update_cell",
		"sheets_batch_update",
		"sheets_format_cells",
		"sheets_set_number_format",
		"sheets_add_conditional_format",
		"sheets_merge_cells",
		"sheets_create_chart",
		"sheets_update_chart",
		"sheets_position_chart",
		"sheets_apply_formula",
		"sheets_apply_array_formula",
		"sheets_create_named_range",
		"sheets_delete_named_range",
		"sheets_create_spreadsheet",
		"sheets_create_worksheet",
	} {
		if !writeNames[want] {
			t.Errorf("write mode missing tool %q", want)
		}
	}

	// Every read-only tool must remain available in write mode.
	for name := range readOnlyNames {
		if !writeNames[name] {
			t.Errorf("tool %q available in read-only mode but not in write mode", name)
		}
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"sheets_read_range", "Google Sheets Tools"},
		{"sheets_batch_update", "Google Sheets Tools"},
		{"google_get_auth_url", "Authentication Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		if got := getCategoryFromToolName(tt.name); got != tt.expected {
			t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
