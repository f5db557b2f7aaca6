package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/juberthrdzz/vapi-voice-agent/internal/domain"
	"github.com/juberthrdzz/vapi-voice-agent/internal/event"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
	pkgkafka "github.com/juberthrdzz/vapi-voice-agent/pkg/kafka"
)

// --- Mock Repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type mockKitchenNotifier struct {
	mock.Mock
}

func (m *mockKitchenNotifier) NotifyOrder(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// --- Test Helpers ---

const testMenuJSON = `{
	"categories": {
		"appetizers": [
			{"item_id": "app1", "name": "Bruschetta", "price": 799}
		],
		"mains": [
			{"item_id": "main1", "name": "Grilled Salmon", "price": 2499},
			{"item_id": "main2", "name": "Ribeye Steak", "price": 3299}
		],
		"desserts": [
			{"item_id": "dess1", "name": "Tiramisu", "price": 899}
		]
	}
}`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestMenu(t *testing.T) *menu.Menu {
	t.Helper()
	m, err := menu.Parse([]byte(testMenuJSON))
	require.NoError(t, err)
	return m
}

func newTestService(t *testing.T, carts *mockCartRepository, orders *mockOrderRepository, kitchen KitchenNotifier) *CartService {
	t.Helper()
	logger := newTestLogger()
	// Kafka producer pointed at nothing; publishes fail and are logged.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
	return NewCartService(newTestMenu(t), carts, orders, producer, kitchen, logger, 50)
}

func cartWithLine(sessionID, itemID string, quantity int) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		SessionID: sessionID,
		Lines:     []domain.Line{{ItemID: itemID, Quantity: quantity}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- AddItem ---

func TestAddItem_NewCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(nil, apperrors.NotFound("CART_NOT_FOUND", "cart not found"))
	carts.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)

	summary, err := svc.AddItem(ctx, "call-1", "main1", 2, "no capers")

	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "main1", summary.Items[0].ItemID)
	assert.Equal(t, "Grilled Salmon", summary.Items[0].Name)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, "no capers", summary.Items[0].SpecialRequests)
	assert.Equal(t, int64(4998), summary.Items[0].LineTotal)
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, int64(4998), summary.TotalAmount)

	carts.AssertExpectations(t)
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 2), nil)
	carts.On("Save", ctx, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Lines) == 1 && c.Lines[0].Quantity == 3
	})).Return(nil)

	summary, err := svc.AddItem(ctx, "call-1", "main1", 1, "")

	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, int64(7497), summary.TotalAmount)

	carts.AssertExpectations(t)
}

func TestAddItem_UnknownItem(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)

	summary, err := svc.AddItem(context.Background(), "call-1", "item999", 1, "")

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ITEM_NOT_FOUND", appErr.Code)

	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)

	for _, qty := range []int{0, -1} {
		_, err := svc.AddItem(context.Background(), "call-1", "main1", qty, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestAddItem_QuantityLimit(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 49), nil)

	summary, err := svc.AddItem(ctx, "call-1", "main2", 2, "")

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "QUANTITY_LIMIT_EXCEEDED", appErr.Code)

	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_OverwritesSpecialRequests(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	existing := cartWithLine("call-1", "main1", 1)
	existing.Lines[0].SpecialRequests = "extra lemon"
	carts.On("Get", ctx, "call-1").Return(existing, nil)
	carts.On("Save", ctx, mock.Anything).Return(nil)

	summary, err := svc.AddItem(ctx, "call-1", "main1", 1, "no capers")

	require.NoError(t, err)
	assert.Equal(t, "no capers", summary.Items[0].SpecialRequests)
}

// --- RemoveItem ---

func TestRemoveItem_LeavesOtherLines(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	cart := cartWithLine("call-1", "main1", 2)
	cart.Lines = append(cart.Lines, domain.Line{ItemID: "dess1", Quantity: 1})
	carts.On("Get", ctx, "call-1").Return(cart, nil)
	carts.On("Save", ctx, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Lines) == 1 && c.Lines[0].ItemID == "dess1"
	})).Return(nil)

	summary, err := svc.RemoveItem(ctx, "call-1", "main1")

	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "dess1", summary.Items[0].ItemID)
	assert.Equal(t, int64(899), summary.TotalAmount)

	carts.AssertExpectations(t)
}

func TestRemoveItem_LastLineDeletesCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 2), nil)
	carts.On("Delete", ctx, "call-1").Return(nil)

	summary, err := svc.RemoveItem(ctx, "call-1", "main1")

	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.TotalItems)
	assert.Zero(t, summary.TotalAmount)

	carts.AssertExpectations(t)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 2), nil)

	_, err := svc.RemoveItem(ctx, "call-1", "dess1")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ITEM_NOT_IN_CART", appErr.Code)
}

func TestRemoveItem_NoCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(nil, apperrors.NotFound("CART_NOT_FOUND", "cart not found"))

	_, err := svc.RemoveItem(ctx, "call-1", "main1")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ITEM_NOT_IN_CART", appErr.Code)
}

// --- GetCart ---

func TestGetCart_UnknownSessionIsEmpty(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(nil, apperrors.NotFound("CART_NOT_FOUND", "cart not found"))

	summary, err := svc.GetCart(ctx, "call-1")

	require.NoError(t, err)
	assert.Equal(t, "call-1", summary.SessionID)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.TotalAmount)
}

func TestGetCart_PricesFromMenu(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	cart := cartWithLine("call-1", "main1", 3)
	carts.On("Get", ctx, "call-1").Return(cart, nil)

	summary, err := svc.GetCart(ctx, "call-1")

	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, int64(7497), summary.TotalAmount)
}

func TestGetCart_StoreDown(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(nil, apperrors.Unavailable("cart store: get", assert.AnError))

	_, err := svc.GetCart(ctx, "call-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

// --- Checkout ---

func TestCheckout_Success(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	kitchen := new(mockKitchenNotifier)
	svc := newTestService(t, carts, orders, kitchen)
	ctx := context.Background()

	cart := cartWithLine("call-1", "main1", 3)
	carts.On("Get", ctx, "call-1").Return(cart, nil)
	carts.On("Delete", ctx, "call-1").Return(nil)

	var savedOrder *domain.Order
	orders.On("Save", ctx, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		savedOrder = args.Get(1).(*domain.Order)
	}).Return(nil)
	kitchen.On("NotifyOrder", ctx, mock.Anything).Return(nil)

	result, err := svc.Checkout(ctx, "call-1", "Juan Pérez", "555-1234", "ring the bell")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.OrderID, "order_"))
	assert.Equal(t, "confirmed", result.Status)
	assert.Equal(t, int64(7497), result.TotalAmount)
	assert.Equal(t, EstimatedPrepTime, result.EstimatedTime)

	require.NotNil(t, savedOrder)
	assert.Equal(t, "Juan Pérez", savedOrder.CustomerName)
	assert.Equal(t, "555-1234", savedOrder.CustomerPhone)
	assert.Equal(t, "ring the bell", savedOrder.SpecialInstructions)
	require.Len(t, savedOrder.Items, 1)
	assert.Equal(t, "Grilled Salmon", savedOrder.Items[0].Name)
	assert.Equal(t, int64(2499), savedOrder.Items[0].Price)
	assert.Equal(t, 3, savedOrder.Items[0].Quantity)
	assert.Equal(t, domain.StatusConfirmed, savedOrder.Status)

	carts.AssertExpectations(t)
	orders.AssertExpectations(t)
	kitchen.AssertExpectations(t)
}

func TestCheckout_NoCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(nil, apperrors.NotFound("CART_NOT_FOUND", "cart not found"))

	_, err := svc.Checkout(ctx, "call-1", "Juan", "555-1234", "")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CART_NOT_FOUND", appErr.Code)

	orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckout_EmptyCart(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	carts.On("Get", ctx, "call-1").Return(&domain.Cart{SessionID: "call-1", CreatedAt: now, UpdatedAt: now}, nil)

	_, err := svc.Checkout(ctx, "call-1", "Juan", "555-1234", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "EMPTY_CART", appErr.Code)
}

func TestCheckout_MissingCustomerFields(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, "call-1", "", "555-1234", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Checkout(ctx, "call-1", "Juan", "  ", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCheckout_CartCleanupFailureStillSucceeds(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 1), nil)
	carts.On("Delete", ctx, "call-1").Return(apperrors.Unavailable("cart store: del", assert.AnError))
	orders.On("Save", ctx, mock.Anything).Return(nil)

	result, err := svc.Checkout(ctx, "call-1", "Juan", "555-1234", "")

	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Status)
}

func TestCheckout_KitchenFailureStillSucceeds(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	kitchen := new(mockKitchenNotifier)
	svc := newTestService(t, carts, orders, kitchen)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 1), nil)
	carts.On("Delete", ctx, "call-1").Return(nil)
	orders.On("Save", ctx, mock.Anything).Return(nil)
	kitchen.On("NotifyOrder", ctx, mock.Anything).Return(assert.AnError)

	result, err := svc.Checkout(ctx, "call-1", "Juan", "555-1234", "")

	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Status)
}

func TestCheckout_OrderSaveFailure(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	carts.On("Get", ctx, "call-1").Return(cartWithLine("call-1", "main1", 1), nil)
	orders.On("Save", ctx, mock.Anything).Return(apperrors.Unavailable("order store: set", assert.AnError))

	_, err := svc.Checkout(ctx, "call-1", "Juan", "555-1234", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Orders ---

func TestGetOrder(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	order := &domain.Order{ID: "order_1_abc", Status: domain.StatusConfirmed}
	orders.On("Get", ctx, "order_1_abc").Return(order, nil)

	got, err := svc.GetOrder(ctx, "order_1_abc")

	require.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestUpdateOrderStatus_ValidTransition(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	order := &domain.Order{ID: "order_1_abc", Status: domain.StatusConfirmed}
	orders.On("Get", ctx, "order_1_abc").Return(order, nil)
	orders.On("Save", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.StatusPreparing
	})).Return(nil)

	got, err := svc.UpdateOrderStatus(ctx, "order_1_abc", domain.StatusPreparing)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)
	orders.AssertExpectations(t)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)
	ctx := context.Background()

	order := &domain.Order{ID: "order_1_abc", Status: domain.StatusCompleted}
	orders.On("Get", ctx, "order_1_abc").Return(order, nil)

	_, err := svc.UpdateOrderStatus(ctx, "order_1_abc", domain.StatusPreparing)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", appErr.Code)
	orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderRepository)
	svc := newTestService(t, carts, orders, nil)

	_, err := svc.UpdateOrderStatus(context.Background(), "order_1_abc", "shipped")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
