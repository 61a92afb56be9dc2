package view_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/view"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestDashboardPage(t *testing.T) {
	active := []domain.Order{{
		ID: 7, FullName: "<script>x</script>", Email: "a@b.co", Phone: "5551234567", Address: "Main St",
		Items: []domain.OrderItem{{ItemID: 1, Name: "Mug", Price: 12.5}}, TotalPrice: 12.5,
		Status: domain.OrderStatusActive, CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}}
	html := render(t, view.DashboardPage("admin@shop.test", view.CatalogStats{Hoodies: 2, Products: 3}, active, nil))

	for _, want := range []string{
		"<!DOCTYPE html>",
		"admin@shop.test",
		"Hoodies: 2",
		`id="orders"`,
		`data-on:click="@post(&#39;/admin/orders/7/deliver&#39;)"`,
		`@delete(&#39;/admin/orders/7&#39;)`,
		"Mug (12.50)",
		"Archived orders (0)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "<script>x</script>") {
		t.Fatal("customer input was not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;x&lt;/script&gt;") {
		t.Fatal("escaped customer name missing")
	}
}

func TestOrderLists_ArchivedOffersRestore(t *testing.T) {
	archived := []domain.Order{{ID: 3, Status: domain.OrderStatusArchived}}
	html := render(t, view.OrderLists(nil, archived))
	if !strings.Contains(html, `@post(&#39;/admin/orders/3/restore&#39;)`) {
		t.Fatalf("expected restore action, got %s", html)
	}
	if !strings.HasPrefix(html, `<section id="orders">`) {
		t.Fatal("fragment must be rooted at #orders")
	}
}

func TestFlash(t *testing.T) {
	html := render(t, view.Flash("Order <1> not found"))
	if html != `<div id="flash" class="flash">Order &lt;1&gt; not found</div>` {
		t.Fatalf("unexpected flash %q", html)
	}
}

func TestOrderLists_EscapesNotesAndItems(t *testing.T) {
	orders := []domain.Order{{
		ID: 9, Notes: `"><img src=x onerror=alert(1)>`,
		Items: []domain.OrderItem{{Name: "<b>Cap</b>", Price: 3}},
	}}
	html := render(t, view.OrderLists(orders, nil))
	for _, raw := range []string{"<img", "<b>Cap</b>"} {
		if strings.Contains(html, raw) {
			t.Fatalf("unescaped %q in %s", raw, html)
		}
	}
	if !strings.Contains(html, "&lt;b&gt;Cap&lt;/b&gt; (3.00)") {
		t.Fatalf("item line missing: %s", html)
	}
}

func TestOrderLists_Empty(t *testing.T) {
	html := render(t, view.OrderLists(nil, nil))
	if strings.Count(html, "<p>No orders.</p>") != 2 {
		t.Fatalf("expected both tables empty, got %s", html)
	}
}
