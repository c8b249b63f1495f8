package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
)

var (
	ErrEmptyCart          = errors.New("cart must contain at least one item")
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 100")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderNotCancelable = errors.New("order can no longer be cancelled")
)

type CheckoutItem struct {
	ProductID uint
	Quantity  int
}

type CheckoutInput struct {
	Items []CheckoutItem
}

// FulfillmentScheduler hands paid orders to the background worker.
type FulfillmentScheduler interface {
	EnqueueFulfillment(ctx context.Context, orderID uint) error
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	scheduler FulfillmentScheduler
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, scheduler FulfillmentScheduler) *OrderService {
	return &OrderService{orders: orders, products: products, scheduler: scheduler}
}

// Checkout reserves stock for every line item and creates a pending order.
func (s *OrderService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range input.Items {
		if item.Quantity < 1 || item.Quantity > 100 {
			return nil, ErrInvalidQuantity
		}
	}

	var (
		total     float64
		lineItems []domain.OrderItem
		reserved  []CheckoutItem
	)
	for _, item := range input.Items {
		product, err := s.products.FindByID(item.ProductID)
		if err != nil {
			s.restock(ctx, reserved)
			return nil, err
		}
		if err := s.products.DecrementStock(item.ProductID, item.Quantity); err != nil {
			s.restock(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
		total += product.Price * float64(item.Quantity)
		lineItems = append(lineItems, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &domain.Order{
		Number: newOrderNumber(),
		UserID: userID,
		Status: domain.OrderStatusPending,
		Total:  total,
		Items:  lineItems,
	}
	if err := s.orders.Create(order); err != nil {
		s.restock(ctx, reserved)
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	return s.orders.FindByID(id)
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint, req repository.PageRequest) (repository.PageResult[domain.Order], error) {
	return s.orders.ListPaged(repository.OrderListQuery{PageRequest: req, UserID: userID})
}

func (s *OrderService) ListAll(ctx context.Context, q repository.OrderListQuery) (repository.PageResult[domain.Order], error) {
	return s.orders.ListPaged(q)
}

// MarkPaid is driven by the payment webhook: pending -> paid, then the
// fulfillment job is queued.
func (s *OrderService) MarkPaid(ctx context.Context, number, paymentRef string) (*domain.Order, error) {
	order, err := s.orders.FindByNumber(number)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		observability.RecordOrderTransition(ctx, order.Status, domain.OrderStatusPaid, "invalid")
		return nil, ErrInvalidTransition
	}
	if err := s.orders.MarkPaid(order.ID, paymentRef); err != nil {
		observability.RecordOrderTransition(ctx, domain.OrderStatusPending, domain.OrderStatusPaid, "error")
		return nil, err
	}
	order.Status = domain.OrderStatusPaid
	order.PaymentRef = paymentRef
	observability.RecordOrderTransition(ctx, domain.OrderStatusPending, domain.OrderStatusPaid, "success")

	if s.scheduler != nil {
		if err := s.scheduler.EnqueueFulfillment(ctx, order.ID); err != nil {
			slog.WarnContext(ctx, "enqueue fulfillment failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// Fulfill moves a paid order to fulfilled. Called from the worker.
func (s *OrderService) Fulfill(ctx context.Context, id uint) error {
	if err := s.orders.UpdateStatus(id, domain.OrderStatusPaid, domain.OrderStatusFulfilled); err != nil {
		observability.RecordOrderTransition(ctx, domain.OrderStatusPaid, domain.OrderStatusFulfilled, "error")
		return err
	}
	observability.RecordOrderTransition(ctx, domain.OrderStatusPaid, domain.OrderStatusFulfilled, "success")
	return nil
}

// Cancel releases stock for a pending order.
func (s *OrderService) Cancel(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := s.orders.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		observability.RecordOrderTransition(ctx, order.Status, domain.OrderStatusCancelled, "invalid")
		return nil, ErrOrderNotCancelable
	}
	if err := s.orders.UpdateStatus(id, domain.OrderStatusPending, domain.OrderStatusCancelled); err != nil {
		observability.RecordOrderTransition(ctx, domain.OrderStatusPending, domain.OrderStatusCancelled, "error")
		return nil, err
	}
	for _, item := range order.Items {
		s.restockOne(ctx, item.ProductID, item.Quantity)
	}
	order.Status = domain.OrderStatusCancelled
	observability.RecordOrderTransition(ctx, domain.OrderStatusPending, domain.OrderStatusCancelled, "success")
	return order, nil
}

func (s *OrderService) restock(ctx context.Context, reserved []CheckoutItem) {
	for _, item := range reserved {
		s.restockOne(ctx, item.ProductID, item.Quantity)
	}
}

func (s *OrderService) restockOne(ctx context.Context, productID uint, qty int) {
	if err := s.products.IncrementStock(productID, qty); err != nil {
		slog.WarnContext(ctx, "restock failed", "product_id", productID, "qty", qty, "error", err)
	}
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.NewString()[:8]))
}
