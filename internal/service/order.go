package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/validate"
)

// SubmitRequest is a customer order as received from the checkout form.
type SubmitRequest struct {
	FullName string
	Phone    string
	Email    string
	Address  string
	Notes    string
	Items    []domain.OrderItem
}

// OrderService handles order submission and the active/archived lifecycle.
type OrderService struct {
	orders  domain.OrderRepository
	metrics *metrics.Metrics
}

func NewOrderService(orders domain.OrderRepository, m *metrics.Metrics) *OrderService {
	return &OrderService{orders: orders, metrics: m}
}

// Submit validates the request and stores the order as active. The first
// failing field is reported.
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (*domain.Order, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)
	req.Notes = strings.TrimSpace(req.Notes)

	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(req.Items))
	var total float64
	for i, it := range req.Items {
		items[i] = domain.OrderItem{ItemID: it.ItemID, Name: strings.TrimSpace(it.Name), Price: it.Price}
		total += it.Price
	}

	order := &domain.Order{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Notes:      req.Notes,
		Items:      items,
		TotalPrice: total,
		Status:     domain.OrderStatusActive,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storeErr("create order", err)
	}

	s.metrics.OrderSubmitted()
	logger.From(ctx).Info("order submitted", "order_id", order.ID, "items", len(items), "total", total)
	return order, nil
}

func validateSubmit(req SubmitRequest) error {
	switch {
	case req.FullName == "":
		return domain.NewFieldError("fullName", "is required")
	case req.Phone == "":
		return domain.NewFieldError("phone", "is required")
	case req.Email == "":
		return domain.NewFieldError("email", "is required")
	case req.Address == "":
		return domain.NewFieldError("address", "is required")
	case len(req.Items) == 0:
		return domain.NewFieldError("items", "at least one item is required")
	}

	if !validate.Email(req.Email) {
		return domain.NewFieldError("email", "is not a valid email address")
	}
	if !validate.Phone(req.Phone) {
		return domain.NewFieldError("phone", fmt.Sprintf("must contain %d to %d digits", validate.MinPhoneDigits, validate.MaxPhoneDigits))
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return domain.NewFieldError("items", fmt.Sprintf("item %d has no name", i+1))
		}
		if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) || it.Price < 0 {
			return domain.NewFieldError("items", fmt.Sprintf("item %d has an invalid price", i+1))
		}
	}
	return nil
}

// List returns orders newest first. An empty status lists every order.
func (s *OrderService) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewFieldError("status", "must be active or archived")
	}
	orders, err := s.orders.List(ctx, domain.OrderFilter{Status: status})
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) ListActive(ctx context.Context) ([]domain.Order, error) {
	return s.List(ctx, domain.OrderStatusActive)
}

func (s *OrderService) ListArchived(ctx context.Context) ([]domain.Order, error) {
	return s.List(ctx, domain.OrderStatusArchived)
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return o, nil
}

// MarkDelivered archives an active order.
func (s *OrderService) MarkDelivered(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusActive, domain.OrderStatusArchived)
}

// Restore moves an archived order back to active.
func (s *OrderService) Restore(ctx context.Context, id int64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.OrderStatusArchived, domain.OrderStatusActive)
}

func (s *OrderService) transition(ctx context.Context, id int64, from, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != from {
		return nil, fmt.Errorf("%w: order %d is %s", domain.ErrInvalidTransition, id, o.Status)
	}

	n, err := s.orders.Update(ctx, id, domain.OrderChanges{Status: &to})
	if err != nil {
		return nil, storeErr("update order", err)
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}

	s.metrics.OrderTransition(string(to))
	logger.From(ctx).Info("order status changed", "order_id", id, "from", from, "to", to)
	return s.Get(ctx, id)
}

// DeletePermanently removes an order in any state.
func (s *OrderService) DeletePermanently(ctx context.Context, id int64) error {
	n, err := s.orders.Delete(ctx, id)
	if err != nil {
		return storeErr("delete order", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	s.metrics.OrderTransition("deleted")
	logger.From(ctx).Info("order deleted", "order_id", id)
	return nil
}
