package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/msomdec/storefront/internal/handler"
)

type itemCreated struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func TestIntegration_HoodieLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	body, ct := multipartBody(t, map[string]string{"name": "Storm", "price": "39.5", "description": "warm"},
		formFile{"image", "storm.png", pngBytes})
	resp := app.do(t, http.MethodPost, "/api/hoodies", admin, body, ct)
	expectStatus(t, resp, http.StatusCreated)
	created := decode[itemCreated](t, resp)
	if created.ID == 0 || created.Message == "" {
		t.Fatalf("unexpected create response %+v", created)
	}

	resp = app.do(t, http.MethodGet, "/api/hoodies", "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	list := decode[[]handler.HoodieDTO](t, resp)
	if len(list) != 1 || list[0].Name != "Storm" || list[0].Price == nil || *list[0].Price != 39.5 {
		t.Fatalf("unexpected listing %+v", list)
	}
	if !strings.HasPrefix(list[0].ImageURL, "/uploads/hoodies/") {
		t.Fatalf("unexpected image URL %q", list[0].ImageURL)
	}

	resp = app.do(t, http.MethodGet, list[0].ImageURL, "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(data, pngBytes) {
		t.Fatal("served bytes differ from upload")
	}

	body, ct = multipartBody(t, map[string]string{"name": "Storm II", "price": ""})
	resp = app.do(t, http.MethodPatch, "/api/hoodies/"+strconv.FormatInt(created.ID, 10), admin, body, ct)
	expectStatus(t, resp, http.StatusOK)

	resp = app.do(t, http.MethodGet, "/api/hoodies/"+strconv.FormatInt(created.ID, 10), "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[handler.HoodieDTO](t, resp)
	if got.Name != "Storm II" || *got.Price != 39.5 || got.Description != "warm" {
		t.Fatalf("partial update changed other fields: %+v", got)
	}

	resp = app.do(t, http.MethodDelete, "/api/hoodies/"+strconv.FormatInt(created.ID, 10), admin, nil, "")
	expectStatus(t, resp, http.StatusOK)

	resp = app.do(t, http.MethodGet, list[0].ImageURL, "", nil, "")
	expectStatus(t, resp, http.StatusNotFound)
	resp = app.do(t, http.MethodDelete, "/api/hoodies/"+strconv.FormatInt(created.ID, 10), admin, nil, "")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestIntegration_HoodieValidation(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		want   string
	}{
		{"missing image", map[string]string{"name": "A", "price": "5"}, nil, "image"},
		{"bad price", map[string]string{"name": "A", "price": "-1"}, []formFile{{"image", "a.png", pngBytes}}, "price"},
		{"missing name", map[string]string{"price": "5"}, []formFile{{"image", "a.png", pngBytes}}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.files...)
			resp := app.do(t, http.MethodPost, "/api/hoodies", admin, body, ct)
			expectStatus(t, resp, http.StatusBadRequest)
			got := decode[map[string]string](t, resp)
			if got["field"] != tt.want {
				t.Fatalf("expected field %q, got %+v", tt.want, got)
			}
		})
	}

	body, ct := multipartBody(t, map[string]string{"name": "A", "price": "5"}, formFile{"image", "a.txt", []byte("plain text, not an image")})
	resp := app.do(t, http.MethodPost, "/api/hoodies", admin, body, ct)
	expectStatus(t, resp, http.StatusBadRequest)
	if msg := decode[map[string]string](t, resp)["message"]; !strings.Contains(msg, "Invalid image type") {
		t.Fatalf("unexpected message %q", msg)
	}

	big := append(append([]byte{}, pngBytes...), make([]byte, handler.MaxUploadBytes)...)
	body, ct = multipartBody(t, map[string]string{"name": "A", "price": "5"}, formFile{"image", "big.png", big})
	resp = app.do(t, http.MethodPost, "/api/hoodies", admin, body, ct)
	expectStatus(t, resp, http.StatusBadRequest)
	if msg := decode[map[string]string](t, resp)["message"]; !strings.Contains(msg, "too large") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestIntegration_AdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t, nil)
	customer := app.customerToken(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/hoodies"},
		{http.MethodPatch, "/api/products/1"},
		{http.MethodDelete, "/api/photos/1"},
		{http.MethodDelete, "/api/products/1/photos/1"},
		{http.MethodGet, "/api/orders"},
		{http.MethodDelete, "/api/orders/1"},
		{http.MethodPost, "/api/orders/1/deliver"},
		{http.MethodGet, "/admin"},
	}
	for _, rt := range routes {
		resp := app.do(t, rt.method, rt.path, "", nil, "")
		expectStatus(t, resp, http.StatusUnauthorized)
		resp = app.do(t, rt.method, rt.path, customer, nil, "")
		expectStatus(t, resp, http.StatusForbidden)
	}
}

func TestIntegration_ProductGallery(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	body, ct := multipartBody(t, map[string]string{"name": "Poster"},
		formFile{"images", "one.png", pngBytes}, formFile{"images", "two.png", pngBytes})
	resp := app.do(t, http.MethodPost, "/api/photos", admin, body, ct)
	expectStatus(t, resp, http.StatusCreated)
	id := strconv.FormatInt(decode[itemCreated](t, resp).ID, 10)

	resp = app.do(t, http.MethodGet, "/api/products", "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	list := decode[[]handler.ProductDTO](t, resp)
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}
	p := list[0]
	if p.Price != nil {
		t.Fatalf("expected no price, got %v", *p.Price)
	}
	if len(p.Images) != 2 || len(p.PhotoIDs) != 2 || p.PrimaryImage != p.Images[0] {
		t.Fatalf("unexpected gallery %+v", p)
	}

	resp = app.do(t, http.MethodDelete, "/api/products/"+id+"/photos/"+strconv.FormatInt(p.PhotoIDs[0], 10), admin, nil, "")
	expectStatus(t, resp, http.StatusOK)

	resp = app.do(t, http.MethodGet, "/api/products/"+id+"/photos", "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	photos := decode[[]handler.PhotoDTO](t, resp)
	if len(photos) != 1 || !photos[0].IsPrimary || photos[0].SortOrder != 1 {
		t.Fatalf("expected promoted remaining photo, got %+v", photos)
	}

	resp = app.do(t, http.MethodDelete, "/api/products/999/photos/"+strconv.FormatInt(photos[0].ID, 10), admin, nil, "")
	expectStatus(t, resp, http.StatusNotFound)

	resp = app.do(t, http.MethodGet, "/api/photos?q=post", "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[[]handler.ProductDTO](t, resp); len(got) != 1 {
		t.Fatalf("search: expected 1 result, got %d", len(got))
	}
	resp = app.do(t, http.MethodGet, "/api/photos?q=mug", "", nil, "")
	if got := decode[[]handler.ProductDTO](t, resp); len(got) != 0 {
		t.Fatalf("search: expected no results, got %d", len(got))
	}
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	order := map[string]any{
		"fullName": "Ada Lovelace",
		"phone":    "555 123 4567",
		"email":    "ada@example.com",
		"address":  "12 Engine St",
		"notes":    "",
		"items": []map[string]any{
			{"id": 1, "name": "A", "price": 20},
			{"id": 2, "name": "B", "price": 15},
		},
	}
	resp := app.doJSON(t, http.MethodPost, "/api/orders", "", order)
	expectStatus(t, resp, http.StatusCreated)
	id := strconv.FormatInt(decode[itemCreated](t, resp).ID, 10)

	resp = app.do(t, http.MethodGet, "/api/orders", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	orders := decode[[]handler.OrderDTO](t, resp)
	if len(orders) != 1 || orders[0].TotalPrice != 35 || orders[0].Status != "active" {
		t.Fatalf("unexpected orders %+v", orders)
	}
	var snapshot struct {
		Items []struct {
			ID    int64   `json:"id"`
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(orders[0].ItemsJSON), &snapshot); err != nil {
		t.Fatalf("itemsJson is not JSON: %v", err)
	}
	if len(snapshot.Items) != 2 || snapshot.Items[1].Name != "B" || snapshot.Items[1].Price != 15 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	resp = app.do(t, http.MethodPost, "/api/orders/"+id+"/deliver", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	resp = app.do(t, http.MethodPost, "/api/orders/"+id+"/deliver", admin, nil, "")
	expectStatus(t, resp, http.StatusConflict)

	resp = app.do(t, http.MethodGet, "/api/orders?status=archived", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[[]handler.OrderDTO](t, resp); len(got) != 1 {
		t.Fatalf("expected 1 archived order, got %d", len(got))
	}
	resp = app.do(t, http.MethodGet, "/api/orders?status=lost", admin, nil, "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = app.do(t, http.MethodPost, "/api/orders/"+id+"/restore", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)

	resp = app.do(t, http.MethodDelete, "/api/orders/"+id, admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	resp = app.do(t, http.MethodGet, "/api/orders/"+id, admin, nil, "")
	expectStatus(t, resp, http.StatusNotFound)
}

func TestIntegration_OrderValidation(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	base := func() map[string]any {
		return map[string]any{
			"fullName": "A", "phone": "5551234567", "email": "a@b.co", "address": "X",
			"items": []map[string]any{{"id": 1, "name": "A", "price": 1}},
		}
	}
	for field, value := range map[string]string{"email": "not-an-email", "phone": "123"} {
		o := base()
		o[field] = value
		resp := app.doJSON(t, http.MethodPost, "/api/orders", "", o)
		expectStatus(t, resp, http.StatusBadRequest)
		if got := decode[map[string]string](t, resp)["field"]; got != field {
			t.Fatalf("expected field %q, got %q", field, got)
		}
	}

	resp := app.do(t, http.MethodPost, "/api/orders", "", strings.NewReader("{"), "application/json")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = app.do(t, http.MethodGet, "/api/orders", admin, nil, "")
	if got := decode[[]handler.OrderDTO](t, resp); len(got) != 0 {
		t.Fatalf("rejected orders were stored: %d", len(got))
	}
}

func TestIntegration_AuthFlow(t *testing.T) {
	app := newTestApp(t, nil)

	creds := map[string]string{"email": "new@example.com", "password": "password123"}
	resp := app.doJSON(t, http.MethodPost, "/api/auth/register", "", creds)
	expectStatus(t, resp, http.StatusCreated)
	resp = app.doJSON(t, http.MethodPost, "/api/auth/register", "", creds)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = app.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "nope"})
	expectStatus(t, resp, http.StatusUnauthorized)
	resp = app.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "password123"})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = app.doJSON(t, http.MethodPost, "/api/auth/login", "", creds)
	expectStatus(t, resp, http.StatusOK)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == handler.TokenCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly || cookie.MaxAge != 24*60*60 {
		t.Fatalf("unexpected token cookie %+v", cookie)
	}

	req, _ := http.NewRequest(http.MethodGet, app.srv.URL+"/api/auth/me", nil)
	req.AddCookie(cookie)
	me, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/auth/me: %v", err)
	}
	defer me.Body.Close()
	expectStatus(t, me, http.StatusOK)
	user := decode[map[string]handler.PrincipalDTO](t, me)["user"]
	if user.Role != "customer" || user.Email != "new@example.com" {
		t.Fatalf("unexpected principal %+v", user)
	}

	resp = app.do(t, http.MethodGet, "/api/auth/me", "", nil, "")
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = app.do(t, http.MethodPost, "/api/auth/logout", "", nil, "")
	expectStatus(t, resp, http.StatusOK)
	for _, c := range resp.Cookies() {
		if c.Name == handler.TokenCookie && c.MaxAge >= 0 {
			t.Fatalf("logout must expire the cookie, got %+v", c)
		}
	}
}

func TestIntegration_AdminLoginCookieTTL(t *testing.T) {
	app := newTestApp(t, nil)
	resp := app.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	expectStatus(t, resp, http.StatusOK)
	for _, c := range resp.Cookies() {
		if c.Name == handler.TokenCookie && c.MaxAge != 8*60*60 {
			t.Fatalf("expected 8h admin cookie, got MaxAge %d", c.MaxAge)
		}
	}
}

func TestIntegration_Dashboard(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminToken(t)

	resp := app.doJSON(t, http.MethodPost, "/api/orders", "", map[string]any{
		"fullName": "Grace", "phone": "5551234567", "email": "g@h.io", "address": "Y",
		"items": []map[string]any{{"id": 1, "name": "Cap", "price": 9}},
	})
	expectStatus(t, resp, http.StatusCreated)
	id := strconv.FormatInt(decode[itemCreated](t, resp).ID, 10)

	resp = app.do(t, http.MethodGet, "/admin", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Grace") || !strings.Contains(string(page), "/admin/orders/"+id+"/deliver") {
		t.Fatalf("dashboard is missing the order:\n%s", page)
	}

	resp = app.do(t, http.MethodPost, "/admin/orders/"+id+"/deliver", admin, nil, "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected SSE response, got %q", ct)
	}
	events, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(events), "datastar-patch-elements") || !strings.Contains(string(events), "/admin/orders/"+id+"/restore") {
		t.Fatalf("expected order lists patch with restore action:\n%s", events)
	}

	order, err := app.deps.Orders.Get(t.Context(), mustID(t, id))
	if err != nil || order.Status != "archived" {
		t.Fatalf("order not archived: %v %+v", err, order)
	}
}

func mustID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	return id
}
