package handler

import (
	"context"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

// OrderHandler handles order submission and administration.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// HandleSubmit stores a customer order. No authentication is required.
// POST /api/orders
// Request:  {"fullName","phone","email","address","items":[{"id","name","price"}],"notes"}
// Response: {"message": "...", "id": 1}
func (h *OrderHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string             `json:"fullName"`
		Phone    string             `json:"phone"`
		Email    string             `json:"email"`
		Address  string             `json:"address"`
		Notes    string             `json:"notes"`
		Items    []domain.OrderItem `json:"items"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	order, err := h.orders.Submit(r.Context(), service.SubmitRequest{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Notes:    req.Notes,
		Items:    req.Items,
	})
	if err != nil {
		writeError(w, r, "submit order", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Order received.", "id": order.ID})
}

// HandleList returns orders newest first, optionally filtered by status.
// GET /api/orders?status=active|archived
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), domain.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// HandleGet returns one order.
// GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}
	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(*order))
}

// HandleDeliver archives an active order.
// POST /api/orders/{id}/deliver
func (h *OrderHandler) HandleDeliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkDelivered, "Order marked delivered.")
}

// HandleRestore moves an archived order back to active.
// POST /api/orders/{id}/restore
func (h *OrderHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Restore, "Order restored.")
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (*domain.Order, error), message string) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}
	order, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, r, "change order status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": message, "order": toOrderDTO(*order)})
}

// HandleDelete removes an order permanently.
// DELETE /api/orders/{id}
func (h *OrderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID.")
		return
	}
	if err := h.orders.DeletePermanently(r.Context(), id); err != nil {
		writeError(w, r, "delete order", err)
		return
	}
	writeMessage(w, http.StatusOK, "Order deleted.")
}
