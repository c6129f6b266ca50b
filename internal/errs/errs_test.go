package errs

import (
	"database/sql"
	"errors"
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", NotFound("expense %s", "e1"), ErrNotFound},
		{"forbidden", Forbidden("only the payer can update"), ErrForbidden},
		{"invalid split", InvalidSplit("no participants"), ErrInvalidSplit},
		{"invalid input", InvalidInput("amount must be positive"), ErrInvalidInput},
		{"conflict", Conflict("already a member"), ErrConflict},
		{"storage", Storage("get expense", sql.ErrConnDone), ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("expense %s", "e1")
	if got, want := err.Error(), "not found: expense e1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStorageKeepsCause(t *testing.T) {
	err := Storage("list expenses", sql.ErrConnDone)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Error("expected driver error to stay reachable")
	}
	if !IsStorage(err) {
		t.Error("expected storage kind")
	}
	if Storage("noop", nil) != nil {
		t.Error("expected nil for nil cause")
	}
}
