package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmstand/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReconcileFixture(t *testing.T) (*MockOrderRepository, *MockOrderMirror, *reconcileService) {
	t.Helper()
	orders := new(MockOrderRepository)
	mirror := new(MockOrderMirror)
	svc := NewReconcileService(orders, mirror, zerolog.Nop()).(*reconcileService)
	// No real sleeping in tests.
	svc.sleep = func(time.Duration) {}
	return orders, mirror, svc
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID:              uuid.New(),
		OrderNumber:     testOrderNumber,
		PaymentIntentID: testIntentID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		CustomerID:      uuid.New(),
		DeliveryMethod:  model.DeliveryMethodShipping,
		Subtotal:        29.00,
		Tax:             3.77,
		Total:           32.77,
	}
}

func wooIDMatches(expected int64) interface{} {
	return mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == expected
	})
}

func TestReconcileService_Succeeded(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	order := pendingOrder()
	items := []model.OrderItem{{OrderID: order.ID, ProductID: 7, Quantity: 2}}
	customer := &model.Customer{ID: order.CustomerID, Email: "jess@example.com"}

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil)
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(true, nil)
	orders.On("GetItems", ctx, order.ID).Return(items, nil)
	orders.On("GetCustomer", ctx, order.CustomerID).Return(customer, nil)
	mirror.On("CreateOrder", ctx, order, items, customer).Return(int64(9001), nil)
	orders.On("RecordMirrorResult", ctx, order.ID, wooIDMatches(9001), "").Return(nil)

	result, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, result.Status)
	assert.Equal(t, model.PaymentStatusPaid, result.PaymentStatus)
	require.NotNil(t, result.WooOrderID)
	assert.Equal(t, int64(9001), *result.WooOrderID)
	orders.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestReconcileService_Succeeded_RetriesUntilVisible(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	var delays []time.Duration
	svc.sleep = func(d time.Duration) { delays = append(delays, d) }

	order := pendingOrder()

	// The pending row appears on the third lookup.
	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(nil, nil).Twice()
	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil).Once()
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(true, nil)
	orders.On("GetItems", ctx, order.ID).Return([]model.OrderItem{}, nil)
	orders.On("GetCustomer", ctx, order.CustomerID).Return(&model.Customer{ID: order.CustomerID}, nil)
	mirror.On("CreateOrder", ctx, order, mock.Anything, mock.Anything).Return(int64(9002), nil)
	orders.On("RecordMirrorResult", ctx, order.ID, wooIDMatches(9002), "").Return(nil)

	_, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, delays)
	orders.AssertExpectations(t)
}

func TestReconcileService_Succeeded_GivesUpAfterFiveAttempts(t *testing.T) {
	ctx := context.Background()
	orders, _, svc := newReconcileFixture(t)

	var delays []time.Duration
	svc.sleep = func(d time.Duration) { delays = append(delays, d) }

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(nil, nil).Times(5)

	_, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	assert.ErrorIs(t, err, model.ErrOrderNotVisible)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}, delays)
	orders.AssertExpectations(t)
}

func TestReconcileService_Succeeded_AlreadyTerminal(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	settled := pendingOrder()
	settled.Status = model.OrderStatusProcessing
	settled.PaymentStatus = model.PaymentStatusPaid

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(settled, nil)

	result, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, result.Status)
	// A repeated delivery must not mirror or mutate again.
	mirror.AssertNotCalled(t, "CreateOrder")
	orders.AssertNotCalled(t, "MarkTerminal")
}

func TestReconcileService_Succeeded_MirrorFailureStillSettles(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	order := pendingOrder()

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil)
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(true, nil)
	orders.On("GetItems", ctx, order.ID).Return([]model.OrderItem{}, nil)
	orders.On("GetCustomer", ctx, order.CustomerID).Return(&model.Customer{ID: order.CustomerID}, nil)
	mirror.On("CreateOrder", ctx, order, mock.Anything, mock.Anything).Return(int64(0), errors.New("woo 503"))
	// The payment outcome is never lost to a mirroring failure: the order
	// is already terminal and the failure lands as a note.
	orders.On("RecordMirrorResult", ctx, order.ID, (*int64)(nil), mock.MatchedBy(func(note string) bool {
		return note != ""
	})).Return(nil)

	result, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, result.PaymentStatus)
	assert.Nil(t, result.WooOrderID)
	orders.AssertExpectations(t)
}

func TestReconcileService_Succeeded_LostRace(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	order := pendingOrder()
	settled := pendingOrder()
	settled.ID = order.ID
	settled.Status = model.OrderStatusProcessing
	settled.PaymentStatus = model.PaymentStatusPaid

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil).Once()
	// Another reconciliation settled the order first.
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(false, nil)
	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(settled, nil).Once()

	result, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, result.Status)
	// The loser must not push a second order upstream.
	mirror.AssertNotCalled(t, "CreateOrder")
	orders.AssertExpectations(t)
}

func TestReconcileService_Succeeded_ConcurrentDeliveryMirrorsOnce(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	// Webhook and client callback race: both read the order while it is
	// still pending. Whoever claims the terminal transition mirrors; the
	// other only reports the settled state.
	first := pendingOrder()
	second := pendingOrder()
	second.ID = first.ID
	second.CustomerID = first.CustomerID
	settled := pendingOrder()
	settled.ID = first.ID
	settled.Status = model.OrderStatusProcessing
	settled.PaymentStatus = model.PaymentStatusPaid

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(first, nil).Once()
	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(second, nil).Once()
	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(settled, nil).Once()
	orders.On("MarkTerminal", ctx, first.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(true, nil).Once()
	orders.On("MarkTerminal", ctx, first.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(false, nil).Once()
	orders.On("GetItems", ctx, first.ID).Return([]model.OrderItem{}, nil)
	orders.On("GetCustomer", ctx, first.CustomerID).Return(&model.Customer{ID: first.CustomerID}, nil)
	mirror.On("CreateOrder", ctx, mock.Anything, mock.Anything, mock.Anything).Return(int64(9001), nil)
	orders.On("RecordMirrorResult", ctx, first.ID, wooIDMatches(9001), "").Return(nil)

	winner, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)
	require.NoError(t, err)
	loser, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusProcessing, winner.Status)
	assert.Equal(t, model.OrderStatusProcessing, loser.Status)
	mirror.AssertNumberOfCalls(t, "CreateOrder", 1)
	orders.AssertExpectations(t)
}

func TestReconcileService_Succeeded_RecordMirrorFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	order := pendingOrder()

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil)
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, (*int64)(nil), "").Return(true, nil)
	orders.On("GetItems", ctx, order.ID).Return([]model.OrderItem{}, nil)
	orders.On("GetCustomer", ctx, order.CustomerID).Return(&model.Customer{ID: order.CustomerID}, nil)
	mirror.On("CreateOrder", ctx, order, mock.Anything, mock.Anything).Return(int64(9004), nil)
	orders.On("RecordMirrorResult", ctx, order.ID, wooIDMatches(9004), "").Return(errors.New("db down"))

	result, err := svc.ReconcileSucceeded(ctx, testOrderNumber, testIntentID)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, result.PaymentStatus)
	orders.AssertExpectations(t)
}

func TestReconcileService_Failed(t *testing.T) {
	ctx := context.Background()
	orders, mirror, svc := newReconcileFixture(t)

	order := pendingOrder()

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(order, nil)
	orders.On("MarkTerminal", ctx, order.ID, model.OrderStatusCancelled, model.PaymentStatusFailed, (*int64)(nil), "Payment failed: card_declined").Return(true, nil)

	result, err := svc.ReconcileFailed(ctx, testOrderNumber, testIntentID, "card_declined")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, result.Status)
	assert.Equal(t, model.PaymentStatusFailed, result.PaymentStatus)
	// A failed payment never reaches the commerce backend.
	mirror.AssertNotCalled(t, "CreateOrder")
	orders.AssertExpectations(t)
}

func TestReconcileService_Failed_NotFound(t *testing.T) {
	ctx := context.Background()
	orders, _, svc := newReconcileFixture(t)

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(nil, nil)

	_, err := svc.ReconcileFailed(ctx, testOrderNumber, testIntentID, "card_declined")

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestReconcileService_Failed_AlreadyTerminal(t *testing.T) {
	ctx := context.Background()
	orders, _, svc := newReconcileFixture(t)

	settled := pendingOrder()
	settled.Status = model.OrderStatusCancelled
	settled.PaymentStatus = model.PaymentStatusFailed

	orders.On("GetByNumberAndIntent", ctx, testOrderNumber, testIntentID).Return(settled, nil)

	result, err := svc.ReconcileFailed(ctx, testOrderNumber, testIntentID, "card_declined")

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, result.Status)
	orders.AssertNotCalled(t, "MarkTerminal")
}
