package service

import (
	"context"
	"time"

	"farmstand/internal/model"
	"farmstand/internal/payment"
	"farmstand/internal/tax"
	"farmstand/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateCustomer(ctx context.Context, tx pgx.Tx, customer *model.Customer) error {
	args := m.Called(ctx, tx, customer)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNumberAndIntent(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error) {
	args := m.Called(ctx, orderNumber, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockOrderRepository) MarkTerminal(ctx context.Context, orderID uuid.UUID, status, paymentStatus string, wooOrderID *int64, note string) (bool, error) {
	args := m.Called(ctx, orderID, status, paymentStatus, wooOrderID, note)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) RecordMirrorResult(ctx context.Context, orderID uuid.UUID, wooOrderID *int64, note string) error {
	args := m.Called(ctx, orderID, wooOrderID, note)
	return args.Error(0)
}

// MockIntentRepository is a mock implementation of repository.IntentRepository.
type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) Save(ctx context.Context, intent *model.ValidatedPaymentIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) GetByID(ctx context.Context, paymentIntentID string) (*model.ValidatedPaymentIntent, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidatedPaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockPickupRepository is a mock implementation of repository.PickupLocationRepository.
type MockPickupRepository struct {
	mock.Mock
}

func (m *MockPickupRepository) Upsert(ctx context.Context, locations []model.PickupLocation) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

func (m *MockPickupRepository) GetByExternalID(ctx context.Context, externalID string) (*model.PickupLocation, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PickupLocation), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

// MockCartValidator is a mock implementation of CartValidator.
type MockCartValidator struct {
	mock.Mock
}

func (m *MockCartValidator) Validate(ctx context.Context, cart *model.CartSnapshot) (*validation.Result, error) {
	args := m.Called(ctx, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*validation.Result), args.Error(1)
}

// MockShippingResolver is a mock implementation of validation.ShippingResolver.
type MockShippingResolver struct {
	mock.Mock
}

func (m *MockShippingResolver) Cost(ctx context.Context, items []model.ValidatedItem, deliveryMethod, province string) float64 {
	args := m.Called(ctx, items, deliveryMethod, province)
	return args.Get(0).(float64)
}

// MockTaxCalculator is a mock implementation of validation.TaxCalculator.
type MockTaxCalculator struct {
	mock.Mock
}

func (m *MockTaxCalculator) Supported(province string) bool {
	args := m.Called(province)
	return args.Bool(0)
}

func (m *MockTaxCalculator) Calculate(items []model.ValidatedItem, province string, shipping float64) tax.Result {
	args := m.Called(items, province, shipping)
	return args.Get(0).(tax.Result)
}

// MockOrderMirror is a mock implementation of OrderMirror.
type MockOrderMirror struct {
	mock.Mock
}

func (m *MockOrderMirror) CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem, customer *model.Customer) (int64, error) {
	args := m.Called(ctx, order, items, customer)
	return args.Get(0).(int64), args.Error(1)
}

// MockPickupSource is a mock implementation of PickupSource.
type MockPickupSource struct {
	mock.Mock
}

func (m *MockPickupSource) FetchPickupLocations(ctx context.Context) ([]model.PickupLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PickupLocation), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
