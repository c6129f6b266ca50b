package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mmynk/hisab/internal/config"
)

func TestCorsMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", []string{"*"}, "https://evil.test", http.MethodPost, "*", http.StatusTeapot},
		{"listed origin", []string{"https://hisab.app"}, "https://hisab.app", http.MethodPost, "https://hisab.app", http.StatusTeapot},
		{"unlisted origin", []string{"https://hisab.app"}, "https://evil.test", http.MethodPost, "", http.StatusTeapot},
		{"preflight", []string{"https://hisab.app"}, "https://hisab.app", http.MethodOptions, "https://hisab.app", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/hisab.v1.ExpenseService/CreateExpense", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			corsMiddleware(next, tt.allowed).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := openStore(ctx, &config.Config{StoreDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	defer mem.Close()

	path := filepath.Join(t.TempDir(), "nested", "hisab.db")
	lite, err := openStore(ctx, &config.Config{StoreDriver: config.DriverSQLite, DBPath: path})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer lite.Close()
	if err := lite.Ping(ctx); err != nil {
		t.Errorf("sqlite ping: %v", err)
	}

	if _, err := openStore(ctx, &config.Config{StoreDriver: "dynamodb"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
