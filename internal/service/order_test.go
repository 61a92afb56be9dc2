package service_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/service"
)

func validSubmit() service.SubmitRequest {
	return service.SubmitRequest{
		FullName: "Ada Lovelace",
		Phone:    "+1 (555) 123-4567",
		Email:    "ada@example.com",
		Address:  "12 Analytical Way",
		Notes:    "ring twice",
		Items: []domain.OrderItem{
			{ItemID: 1, Name: "A", Price: 20},
			{ItemID: 2, Name: "B", Price: 15},
		},
	}
}

func newOrderService(t *testing.T) (*service.OrderService, domain.RecordStore) {
	t.Helper()
	store := newTestStore(t)
	return service.NewOrderService(store.Orders(), nil), store
}

func TestOrder_Submit_SnapshotAndTotal(t *testing.T) {
	ctx := context.Background()
	orders, store := newOrderService(t)

	// Catalog changes after submission must not reach the snapshot.
	hoodies := service.NewCatalogService(service.HoodieVariant, store, newTestBlobs(t))
	h, err := hoodies.Create(ctx, service.CreateRequest{Name: "A", Price: "20", Images: []service.Upload{pngUpload("a.png")}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := validSubmit()
	req.Items[0].ItemID = h.ID
	o, err := orders.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := hoodies.Update(ctx, h.ID, service.UpdateRequest{Name: strPtr("Renamed"), Price: strPtr("99")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := orders.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalPrice != 35 {
		t.Fatalf("expected total 35, got %v", got.TotalPrice)
	}
	if got.Status != domain.OrderStatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
	if !slices.Equal(got.Items, req.Items) {
		t.Fatalf("snapshot changed: %+v vs %+v", got.Items, req.Items)
	}
}

func TestOrder_Submit_Validation(t *testing.T) {
	ctx := context.Background()
	orders, _ := newOrderService(t)

	tests := []struct {
		name   string
		mutate func(*service.SubmitRequest)
		field  string
	}{
		{"missing name", func(r *service.SubmitRequest) { r.FullName = " " }, "fullName"},
		{"missing phone", func(r *service.SubmitRequest) { r.Phone = "" }, "phone"},
		{"missing email", func(r *service.SubmitRequest) { r.Email = "" }, "email"},
		{"missing address", func(r *service.SubmitRequest) { r.Address = "" }, "address"},
		{"no items", func(r *service.SubmitRequest) { r.Items = nil }, "items"},
		{"bad email", func(r *service.SubmitRequest) { r.Email = "not-an-email" }, "email"},
		{"short phone", func(r *service.SubmitRequest) { r.Phone = "123" }, "phone"},
		{"long phone", func(r *service.SubmitRequest) { r.Phone = "1234567890123456" }, "phone"},
		{"letters in phone", func(r *service.SubmitRequest) { r.Phone = "555-CALL-NOW-1" }, "phone"},
		{"bad email before bad phone", func(r *service.SubmitRequest) { r.Email = "x"; r.Phone = "1" }, "email"},
		{"unnamed item", func(r *service.SubmitRequest) { r.Items[1].Name = "" }, "items"},
		{"negative price", func(r *service.SubmitRequest) { r.Items[0].Price = -1 }, "items"},
		{"NaN price", func(r *service.SubmitRequest) { r.Items[0].Price = math.NaN() }, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmit()
			tt.mutate(&req)
			_, err := orders.Submit(ctx, req)
			if !errors.Is(err, domain.ErrInvalidField) {
				t.Fatalf("expected ErrInvalidField, got %v", err)
			}
			if f := domain.FieldOf(err); f != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, f)
			}
		})
	}

	all, err := orders.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected orders must not persist, got %d", len(all))
	}
}

func TestOrder_Submit_FreeItemAllowed(t *testing.T) {
	orders, _ := newOrderService(t)
	req := validSubmit()
	req.Items = []domain.OrderItem{{ItemID: 9, Name: "Sample", Price: 0}}
	o, err := orders.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.TotalPrice != 0 {
		t.Fatalf("expected zero total, got %v", o.TotalPrice)
	}
}

func TestOrder_DeliverRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	orders, _ := newOrderService(t)
	o, err := orders.Submit(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	delivered, err := orders.MarkDelivered(ctx, o.ID)
	if err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if delivered.Status != domain.OrderStatusArchived {
		t.Fatalf("expected archived, got %s", delivered.Status)
	}

	restored, err := orders.Restore(ctx, o.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Status != domain.OrderStatusActive {
		t.Fatalf("expected active, got %s", restored.Status)
	}
	if restored.FullName != o.FullName || restored.Phone != o.Phone || restored.Email != o.Email ||
		restored.Address != o.Address || restored.Notes != o.Notes || restored.TotalPrice != o.TotalPrice ||
		!slices.Equal(restored.Items, o.Items) {
		t.Fatalf("round trip changed fields:\n%+v\n%+v", restored, o)
	}
}

func TestOrder_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	orders, _ := newOrderService(t)
	o, err := orders.Submit(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := orders.Restore(ctx, o.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("restore active: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := orders.MarkDelivered(ctx, o.ID); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if _, err := orders.MarkDelivered(ctx, o.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("deliver archived: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := orders.MarkDelivered(ctx, o.ID+50); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing order: expected ErrNotFound, got %v", err)
	}
}

func TestOrder_ListByStatus(t *testing.T) {
	ctx := context.Background()
	orders, _ := newOrderService(t)

	var ids []int64
	for range 3 {
		o, err := orders.Submit(ctx, validSubmit())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, o.ID)
	}
	if _, err := orders.MarkDelivered(ctx, ids[1]); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	active, err := orders.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 || active[0].ID != ids[2] || active[1].ID != ids[0] {
		t.Fatalf("expected active newest first [%d %d], got %+v", ids[2], ids[0], active)
	}

	archived, err := orders.ListArchived(ctx)
	if err != nil {
		t.Fatalf("ListArchived: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != ids[1] {
		t.Fatalf("unexpected archived list %+v", archived)
	}

	if _, err := orders.List(ctx, "shipped"); !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("unknown status: expected ErrInvalidField, got %v", err)
	}
}

func TestOrder_DeletePermanently(t *testing.T) {
	ctx := context.Background()
	orders, _ := newOrderService(t)
	a, _ := orders.Submit(ctx, validSubmit())
	b, _ := orders.Submit(ctx, validSubmit())
	if _, err := orders.MarkDelivered(ctx, b.ID); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		if err := orders.DeletePermanently(ctx, id); err != nil {
			t.Fatalf("DeletePermanently(%d): %v", id, err)
		}
		if _, err := orders.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("order %d should be gone, got %v", id, err)
		}
	}
	if err := orders.DeletePermanently(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestOrder_TransitionsAndDeletesAreCounted(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	orders := service.NewOrderService(newTestStore(t).Orders(), m)

	a, _ := orders.Submit(ctx, validSubmit())
	if _, err := orders.MarkDelivered(ctx, a.ID); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if err := orders.DeletePermanently(ctx, a.ID); err != nil {
		t.Fatalf("DeletePermanently: %v", err)
	}
	// A missing order is not counted.
	if err := orders.DeletePermanently(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	text := rec.Body.String()
	for _, want := range []string{
		`storefront_orders_submitted_total 1`,
		`storefront_orders_transitions_total{to="archived"} 1`,
		`storefront_orders_transitions_total{to="deleted"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestOrder_StoreFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	orders := service.NewOrderService(store.Orders(), nil)
	store.Close()

	_, err := orders.Submit(ctx, validSubmit())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
