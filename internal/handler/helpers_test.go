package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/storefront/internal/blob"
	"github.com/msomdec/storefront/internal/handler"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
)

const (
	testJWTSecret     = "test-secret-for-handler-tests-0123456789"
	testAdminEmail    = "admin@shop.test"
	testAdminPassword = "admin-pass"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR test image")

type testApp struct {
	srv  *httptest.Server
	deps handler.Deps
}

func newTestDeps(t *testing.T) handler.Deps {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	blobs, err := blob.NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	auth, err := service.NewAuthService(db.Accounts(), testJWTSecret, 4,
		service.AdminCredentials{Email: testAdminEmail, Password: testAdminPassword})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	m := metrics.New()
	return handler.Deps{
		Auth:     auth,
		Hoodies:  service.NewCatalogService(service.HoodieVariant, db, blobs, service.WithMetrics(m)),
		Products: service.NewCatalogService(service.ProductVariant, db, blobs, service.WithMetrics(m)),
		Orders:   service.NewOrderService(db.Orders(), m),
		Blobs:    blobs,
		Health:   db,
		Metrics:  m,
	}
}

func newTestApp(t *testing.T, limiter *service.TokenBucket) *testApp {
	t.Helper()
	deps := newTestDeps(t)
	srv := httptest.NewServer(handler.NewHandler(deps, slog.New(slog.DiscardHandler), limiter))
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, deps: deps}
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := a.deps.Auth.Login(context.Background(), testAdminEmail, testAdminPassword)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return token
}

func (a *testApp) customerToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	if _, err := a.deps.Auth.Register(ctx, "customer@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := a.deps.Auth.Login(ctx, "customer@example.com", "password123")
	if err != nil {
		t.Fatalf("customer login: %v", err)
	}
	return token
}

// do sends a request with an optional bearer token.
func (a *testApp) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return a.do(t, method, path, token, bytes.NewReader(b), "application/json")
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, body)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}
