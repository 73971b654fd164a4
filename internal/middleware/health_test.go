package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     string
	}{
		{name: "healthy", wantCode: http.StatusOK, want: "healthy"},
		{name: "unhealthy", err: errors.New("db down"), wantCode: http.StatusServiceUnavailable, want: "unhealthy"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := HealthHandler(map[string]HealthChecker{
				"database": checkerFunc(func(ctx context.Context) error { return tt.err }),
			})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.want || body.Checks["database"].Status != tt.want {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}
