package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/repository"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

func newTestOrderService(orders *mockOrderRepository) *OrderService {
	return NewOrderService(orders, newTestEventProducer(), nil, newTestLogger())
}

func pendingOrder() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", ProductID: "prod-1", Quantity: 2, PriceCents: 1990},
		},
		TotalCents: 3980,
		Currency:   "USD",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- Create ---

func TestOrderCreate_StartsPending(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Create(ctx, "user-1", CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: "prod-1", Quantity: 2, PriceCents: 1990},
			{ProductID: "prod-2", Quantity: 1, PriceCents: 500},
		},
		Currency: "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2*1990+500), order.TotalCents)
	assert.NotEmpty(t, order.ID)
	orders.AssertExpectations(t)
}

func TestOrderCreate_RejectsEmptyAndInvalidItems(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateOrderInput{Currency: "USD"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Create(ctx, "user-1", CreateOrderInput{
		Items:    []OrderItemInput{{ProductID: "prod-1", Quantity: 0, PriceCents: 100}},
		Currency: "USD",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Transition ---

func TestOrderTransition_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing, "admin-1", "picked up").Return(nil)

	updated, err := svc.Transition(ctx, order.ID, domain.OrderStatusProcessing, "picked up", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	orders.AssertExpectations(t)
}

func TestOrderTransition_BackwardMoveAllowed(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	order.Status = domain.OrderStatusShipped
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusShipped, domain.OrderStatusProcessing, "admin-1", "returned to depot").Return(nil)

	updated, err := svc.Transition(ctx, order.ID, domain.OrderStatusProcessing, "returned to depot", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestOrderTransition_TerminalOrdersAreFrozen(t *testing.T) {
	for _, status := range []string{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			orders := new(mockOrderRepository)
			svc := newTestOrderService(orders)
			ctx := context.Background()

			order := pendingOrder()
			order.Status = status
			orders.On("GetByID", ctx, order.ID).Return(order, nil)

			_, err := svc.Transition(ctx, order.ID, domain.OrderStatusProcessing, "", "admin-1")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			// No status update and no history row for a rejected transition.
			orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderTransition_SameStatusRejected(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.Transition(ctx, order.ID, domain.OrderStatusPending, "", "admin-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestOrderTransition_UnknownStatusRejected(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	// US spelling is not a valid status.
	_, err := svc.Transition(ctx, order.ID, "canceled", "", "admin-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestOrderTransition_NotFound(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	orders.On("GetByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Transition(ctx, "ghost", domain.OrderStatusProcessing, "", "admin-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderTransition_ConcurrentUpdateConflicts(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	// Another transition moved the order between read and update.
	orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing, "admin-1", "").
		Return(apperrors.Conflict("order order-1 is no longer in status \"pending\""))

	_, err := svc.Transition(ctx, order.ID, domain.OrderStatusProcessing, "", "admin-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// --- CancelByUser ---

func TestOrderCancelByUser_OwnOrder(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	// User cancellations record no acting admin.
	orders.On("UpdateStatus", ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, "", "changed my mind").Return(nil)

	updated, err := svc.CancelByUser(ctx, "user-1", order.ID, "changed my mind")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)
	orders.AssertExpectations(t)
}

func TestOrderCancelByUser_NotOwnerHiddenAsNotFound(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CancelByUser(ctx, "user-2", order.ID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderCancelByUser_DeliveredOrderRejected(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	order.Status = domain.OrderStatusDelivered
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CancelByUser(ctx, "user-1", order.ID, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// --- Reads ---

func TestOrderGetForUser_HidesForeignOrders(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetForUser(ctx, "user-2", order.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := svc.GetForUser(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderHistoryForUser_OrderedTrail(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	order := pendingOrder()
	pendingStatus := domain.OrderStatusPending
	trail := []domain.StatusHistoryEntry{
		{ID: "h-1", OrderID: order.ID, FromStatus: nil, ToStatus: domain.OrderStatusPending},
		{ID: "h-2", OrderID: order.ID, FromStatus: &pendingStatus, ToStatus: domain.OrderStatusProcessing, ChangedBy: "admin-1"},
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("ListHistory", ctx, order.ID).Return(trail, nil)

	got, err := svc.HistoryForUser(ctx, "user-1", order.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].FromStatus)
	assert.Equal(t, domain.OrderStatusPending, got[0].ToStatus)
	assert.Equal(t, domain.OrderStatusProcessing, got[1].ToStatus)
}

func TestOrderList_ValidatesFilterAndBounds(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := newTestOrderService(orders)
	ctx := context.Background()

	_, err := svc.List(ctx, repository.OrderFilter{Status: "bogus"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	orders.On("List", ctx, repository.OrderFilter{Status: domain.OrderStatusShipped, Limit: maxOrderPageSize}).
		Return([]domain.Order{}, nil)

	_, err = svc.List(ctx, repository.OrderFilter{Status: domain.OrderStatusShipped, Limit: 10_000})
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}
