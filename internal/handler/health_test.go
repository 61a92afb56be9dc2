package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/storefront/internal/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandleHealthz(t *testing.T) {
	tests := []struct {
		name       string
		store      handler.Pinger
		wantStatus int
		wantBody   string
	}{
		{"no store", nil, http.StatusOK, "ok"},
		{"store reachable", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
		{"store down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.NewHealthHandler(tt.store).HandleHealthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			resp := w.Result()
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected Content-Type application/json, got %s", ct)
			}
			if body := decode[map[string]string](t, resp); body["status"] != tt.wantBody {
				t.Fatalf("expected status=%s, got %s", tt.wantBody, body["status"])
			}
		})
	}
}

func TestHandleHealthzRouting(t *testing.T) {
	app := newTestApp(t, nil)

	resp := app.do(t, http.MethodGet, "/healthz", "", nil, "")
	expectStatus(t, resp, http.StatusOK)

	resp = app.do(t, http.MethodPost, "/healthz", "", nil, "")
	expectStatus(t, resp, http.StatusMethodNotAllowed)
}
