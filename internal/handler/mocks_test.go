package handler

import (
	"context"

	"farmstand/internal/model"
	"farmstand/internal/tax"

	"github.com/stretchr/testify/mock"
)

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CalculateTaxes(ctx context.Context, req *model.TaxQuoteRequest) (*tax.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Result), args.Error(1)
}

func (m *MockCheckoutService) CalculateShipping(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShippingQuoteResponse), args.Error(1)
}

func (m *MockCheckoutService) CreatePaymentIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntentResponse), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreatePendingOrder(ctx context.Context, req *model.CreatePendingOrderRequest) (*model.CreatePendingOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreatePendingOrderResponse), args.Error(1)
}

func (m *MockOrderService) CleanupExpiredIntents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockReconcileService is a mock implementation of service.ReconcileService.
type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) ReconcileSucceeded(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error) {
	args := m.Called(ctx, orderNumber, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockReconcileService) ReconcileFailed(ctx context.Context, orderNumber, paymentIntentID, reason string) (*model.Order, error) {
	args := m.Called(ctx, orderNumber, paymentIntentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
