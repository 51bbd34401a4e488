package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "test_operation")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "test_tool")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestWithAccount(t *testing.T) {
	logger := slog.Default()
	result := WithAccount(logger, "work")
	if result == nil {
		t.Error("WithAccount returned nil")
	}
}

func TestWithSpreadsheet(t *testing.T) {
	logger := slog.Default()
	result := WithSpreadsheet(logger, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	if result == nil {
		t.Error("WithSpreadsheet returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("test_op")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "test_op" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "test_op")
	}
}

func TestAccountAttr(t *testing.T) {
	attr := Account("work")
	if attr.Key != KeyAccount {
		t.Errorf("Account key = %q, want %q", attr.Key, KeyAccount)
	}
	if attr.Value.String() != "work" {
		t.Errorf("Account value = %q, want %q", attr.Value.String(), "work")
	}
}

func TestSpreadsheetAttr(t *testing.T) {
	attr := Spreadsheet("abc123")
	if attr.Key != KeySpreadsheet {
		t.Errorf("Spreadsheet key = %q, want %q", attr.Key, KeySpreadsheet)
	}
	if attr.Value.String() != "abc123" {
		t.Errorf("Spreadsheet value = %q, want %q", attr.Value.String(), "abc123")
	}
}

func TestRangeAttr(t *testing.T) {
	attr := Range("Sheet1!A1:B2")
	if attr.Key != KeyRange {
		t.Errorf("Range key = %q, want %q", attr.Key, KeyRange)
	}
	if attr.Value.String() != "Sheet1!A1:B2" {
		t.Errorf("Range value = %q, want %q", attr.Value.String(), "Sheet1!A1:B2")
	}
}

func TestToolAttr(t *testing.T) {
	attr := Tool("sheets_read_range")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "sheets_read_range" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "sheets_read_range")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestAttemptAttr(t *testing.T) {
	attr := Attempt(3)
	if attr.Key != KeyAttempt {
		t.Errorf("Attempt key = %q, want %q", attr.Key, KeyAttempt)
	}
	if attr.Value.Int64() != 3 {
		t.Errorf("Attempt value = %d, want 3", attr.Value.Int64())
	}
}

func TestRequestsAttr(t *testing.T) {
	attr := Requests(7)
	if attr.Key != KeyRequests {
		t.Errorf("Requests key = %q, want %q", attr.Key, KeyRequests)
	}
	if attr.Value.Int64() != 7 {
		t.Errorf("Requests value = %d, want 7", attr.Value.Int64())
	}
}

func TestErr(t *testing.T) {
	// Test with error
	err := errors.New("test error")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// Test with nil - should return an empty group that slog will omit
	attr = Err(nil)
	// Empty Group has empty key
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusSuccess != "success" {
		t.Errorf("StatusSuccess = %q, want %q", StatusSuccess, "success")
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q, want %q", StatusError, "error")
	}
}
