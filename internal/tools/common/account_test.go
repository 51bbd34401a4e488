package common

import (
	"context"
	"testing"
)

func TestGetAccountFromArgs_Default(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "no account argument",
			args: map[string]interface{}{},
			want: "default",
		},
		{
			name: "nil args",
			args: nil,
			want: "default",
		},
		{
			name: "empty account argument",
			args: map[string]interface{}{"account": ""},
			want: "default",
		},
		{
			name: "explicit account argument",
			args: map[string]interface{}{"account": "work"},
			want: "work",
		},
		{
			name: "non-string account argument",
			args: map[string]interface{}{"account": 42},
			want: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetAccountFromArgs(ctx, tt.args)
			if got != tt.want {
				t.Errorf("GetAccountFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetAccountFromArgs_ContextTakesPrecedence(t *testing.T) {
	ctx := WithAccount(context.Background(), "session-account")

	got := GetAccountFromArgs(ctx, map[string]interface{}{"account": "arg-account"})
	if got != "session-account" {
		t.Errorf("GetAccountFromArgs() = %q, want %q", got, "session-account")
	}
}

func TestGetAccountFromArgs_EmptyContextAccountIgnored(t *testing.T) {
	ctx := WithAccount(context.Background(), "")

	got := GetAccountFromArgs(ctx, map[string]interface{}{"account": "work"})
	if got != "work" {
		t.Errorf("GetAccountFromArgs() = %q, want %q", got, "work")
	}
}
