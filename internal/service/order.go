package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/event"
	"github.com/trendzone/storefront/internal/notify"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// Admin order listing bounds.
const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// OrderService implements order creation, retrieval, and the status
// workflow: pending, processing, shipped, delivered, cancelled, where
// delivered and cancelled are terminal and every transition appends exactly
// one audit history row.
type OrderService struct {
	orderRepo repository.OrderRepository
	producer  *event.Producer
	notifier  *notify.FulfillmentNotifier
	logger    *slog.Logger
}

// NewOrderService creates a new order service. notifier may be nil when no
// fulfillment webhook is configured.
func NewOrderService(
	orderRepo repository.OrderRepository,
	producer *event.Producer,
	notifier *notify.FulfillmentNotifier,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		producer:  producer,
		notifier:  notifier,
		logger:    logger,
	}
}

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID  string
	Quantity   int
	PriceCents int64
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	Items       []OrderItemInput
	Currency    string
	ShipName    string
	ShipAddress string
	ShipCity    string
	ShipCountry string
}

// Create places a new order in status pending. The order rows, its items,
// and the initial history entry commit in one transaction.
func (s *OrderService) Create(ctx context.Context, userID string, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if input.Currency == "" {
		return nil, apperrors.InvalidInput("currency is required")
	}

	var total int64
	items := make([]domain.OrderItem, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput("item product id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		if item.PriceCents < 0 {
			return nil, apperrors.InvalidInput("item price must not be negative")
		}
		items[i] = domain.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		}
		total += item.PriceCents * int64(item.Quantity)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Status:      domain.OrderStatusPending,
		Items:       items,
		TotalCents:  total,
		Currency:    input.Currency,
		ShipName:    input.ShipName,
		ShipAddress: input.ShipAddress,
		ShipCity:    input.ShipCity,
		ShipCountry: input.ShipCountry,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_cents", total),
	)

	return order, nil
}

// GetForUser retrieves an order, hiding orders owned by other users behind
// NotFound.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

// Get retrieves any order, for the admin panel.
func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List returns orders matching the filter, for the admin panel.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", filter.Status))
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultOrderPageSize
	}
	if filter.Limit > maxOrderPageSize {
		filter.Limit = maxOrderPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Transition moves an order to a new status on behalf of an admin. The
// status update and one history row commit atomically; a concurrent
// transition surfaces as a conflict.
func (s *OrderService) Transition(ctx context.Context, orderID, toStatus, note, adminID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for transition: %w", err)
	}

	return s.transition(ctx, order, toStatus, note, adminID)
}

// CancelByUser cancels the user's own order. It is the same transition
// restricted to the cancelled target, with no acting admin.
func (s *OrderService) CancelByUser(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for cancel: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}

	return s.transition(ctx, order, domain.OrderStatusCancelled, reason, "")
}

// History returns the order's full audit trail, oldest first.
func (s *OrderService) History(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order for history: %w", err)
	}

	entries, err := s.orderRepo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	return entries, nil
}

// HistoryForUser returns the audit trail of the user's own order.
func (s *OrderService) HistoryForUser(ctx context.Context, userID, orderID string) ([]domain.StatusHistoryEntry, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for history: %w", err)
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}

	entries, err := s.orderRepo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order history: %w", err)
	}
	return entries, nil
}

func (s *OrderService) transition(ctx context.Context, order *domain.Order, toStatus, note, changedBy string) (*domain.Order, error) {
	if !domain.IsValidStatus(toStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", toStatus))
	}
	if order.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("order %s is %s and can no longer change status", order.ID, order.Status))
	}
	if toStatus == order.Status {
		return nil, apperrors.InvalidInput(fmt.Sprintf("order is already %s", toStatus))
	}

	fromStatus := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, fromStatus, toStatus, changedBy, note); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order.Status = toStatus
	order.UpdatedAt = time.Now().UTC()

	if err := s.producer.PublishOrderStatusChanged(ctx, order.ID, fromStatus, toStatus, changedBy, note); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if toStatus == domain.OrderStatusCancelled {
		if err := s.producer.PublishOrderCancelled(ctx, order, note); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.cancelled event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.notifier.NotifyStatusChange(ctx, notify.StatusChangePayload{
		OrderID:    order.ID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Note:       note,
		OccurredAt: order.UpdatedAt,
	}); err != nil {
		s.logger.WarnContext(ctx, "fulfillment webhook delivery failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", order.ID),
		slog.String("from_status", fromStatus),
		slog.String("to_status", toStatus),
		slog.String("changed_by", changedBy),
	)

	return order, nil
}
