package handler

import (
	"context"
	"errors"
	"net/http"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/service"
	"github.com/msomdec/storefront/internal/view"
)

// DashboardHandler serves the admin dashboard page and its order actions.
type DashboardHandler struct {
	orders   *service.OrderService
	hoodies  *service.CatalogService
	products *service.CatalogService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(orders *service.OrderService, hoodies, products *service.CatalogService) *DashboardHandler {
	return &DashboardHandler{orders: orders, hoodies: hoodies, products: products}
}

// HandleDashboard renders the dashboard with active and archived orders.
// GET /admin
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, archived, err := h.orderLists(ctx)
	if err != nil {
		logger.From(ctx).Error("load orders for dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var stats view.CatalogStats
	if items, err := h.hoodies.ListPublic(ctx); err == nil {
		stats.Hoodies = len(items)
	}
	if items, err := h.products.ListPublic(ctx); err == nil {
		stats.Products = len(items)
	}

	var email string
	if p := PrincipalFromContext(ctx); p != nil {
		email = p.Email
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.DashboardPage(email, stats, active, archived).Render(ctx, w); err != nil {
		logger.From(ctx).Error("render dashboard", "error", err)
	}
}

// HandleDeliver archives an order and patches the order lists over SSE.
// POST /admin/orders/{id}/deliver
func (h *DashboardHandler) HandleDeliver(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, id int64) error {
		_, err := h.orders.MarkDelivered(ctx, id)
		return err
	})
}

// HandleRestore reactivates an archived order.
// POST /admin/orders/{id}/restore
func (h *DashboardHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, id int64) error {
		_, err := h.orders.Restore(ctx, id)
		return err
	})
}

// HandleDelete removes an order permanently.
// DELETE /admin/orders/{id}
func (h *DashboardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.orders.DeletePermanently)
}

func (h *DashboardHandler) act(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) error) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	actionErr := apply(ctx, id)
	active, archived, err := h.orderLists(ctx)
	if err != nil {
		logger.From(ctx).Error("reload orders", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	flash := ""
	switch {
	case actionErr == nil:
	case errors.Is(actionErr, domain.ErrNotFound):
		flash = "That order no longer exists."
	case errors.Is(actionErr, domain.ErrInvalidTransition):
		flash = "That order was already moved."
	default:
		logger.From(ctx).Error("dashboard order action", "order_id", id, "error", actionErr)
		flash = "Something went wrong. Please try again."
	}
	if err := sse.PatchElementTempl(view.Flash(flash)); err != nil {
		logger.From(ctx).Warn("patch flash", "error", err)
		return
	}
	if err := sse.PatchElementTempl(view.OrderLists(active, archived)); err != nil {
		logger.From(ctx).Warn("patch order lists", "error", err)
	}
}

func (h *DashboardHandler) orderLists(ctx context.Context) (active, archived []domain.Order, err error) {
	if active, err = h.orders.ListActive(ctx); err != nil {
		return nil, nil, err
	}
	if archived, err = h.orders.ListArchived(ctx); err != nil {
		return nil, nil, err
	}
	return active, archived, nil
}
