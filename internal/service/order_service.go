package service

import (
	"context"
	"fmt"
	"time"

	"farmstand/internal/model"
	"farmstand/internal/payment"
	"farmstand/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type orderService struct {
	orders       repository.OrderRepository
	intents      repository.IntentRepository
	pickups      repository.PickupLocationRepository
	gateway      payment.Gateway
	pickupSource PickupSource
	intentMaxAge time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. intentMaxAge bounds how
// old a payment authorization may be at order creation time.
func NewOrderService(
	orders repository.OrderRepository,
	intents repository.IntentRepository,
	pickups repository.PickupLocationRepository,
	gateway payment.Gateway,
	pickupSource PickupSource,
	intentMaxAge time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:       orders,
		intents:      intents,
		pickups:      pickups,
		gateway:      gateway,
		pickupSource: pickupSource,
		intentMaxAge: intentMaxAge,
		now:          time.Now,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// CreatePendingOrder writes the pending order from the persisted
// validated snapshot. Monetary fields never come from the request. The
// unique constraint on payment_intent_id makes creation idempotent even
// under concurrent submission.
func (s *orderService) CreatePendingOrder(ctx context.Context, req *model.CreatePendingOrderRequest) (*model.CreatePendingOrderResponse, error) {
	if req.OrderNumber == "" || req.PaymentIntentID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "orderNumber and paymentIntentId are required")
	}
	if req.OrderData.Email == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "customer email is required")
	}

	// Idempotency pre-check. A retry after a dropped response lands here.
	existing, err := s.orders.GetByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info().
			Str("payment_intent_id", req.PaymentIntentID).
			Str("order_number", existing.OrderNumber).
			Msg("order already exists for payment intent")
		return pendingOrderResponse(existing), nil
	}

	if err := s.verifyIntent(ctx, req.OrderNumber, req.PaymentIntentID); err != nil {
		return nil, err
	}

	validated, err := s.intents.GetByID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if validated == nil {
		// The snapshot is the only trusted source of amounts. Without it
		// the order cannot be written.
		return nil, model.ErrIntentNotFound
	}
	if validated.OrderNumber != req.OrderNumber {
		return nil, model.ErrIntentMismatch
	}

	snapshot := &validated.Snapshot

	pickupID, note, err := s.resolvePickup(ctx, snapshot.DeliveryMethod, req.OrderData.PickupLocationID)
	if err != nil {
		return nil, err
	}

	order, err := s.writeOrder(ctx, req, snapshot, pickupID, note)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost the race against a concurrent submission. The winner's
			// row is the order; return it.
			winner, getErr := s.orders.GetByPaymentIntentID(ctx, req.PaymentIntentID)
			if getErr == nil && winner != nil {
				return pendingOrderResponse(winner), nil
			}
		}
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("payment_intent_id", order.PaymentIntentID).
		Float64("total", order.Total).
		Msg("pending order created")

	return pendingOrderResponse(order), nil
}

// verifyIntent confirms the payment authorization exists, is recent and
// was issued for this order number.
func (s *orderService) verifyIntent(ctx context.Context, orderNumber, paymentIntentID string) error {
	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to verify payment intent: %w", err)
	}
	if intent == nil {
		return model.ErrIntentNotFound
	}
	if s.now().Sub(intent.CreatedAt) > s.intentMaxAge {
		return model.ErrIntentExpired
	}
	if intent.Metadata[payment.MetadataKeyOrderNumber] != orderNumber {
		return model.ErrIntentMismatch
	}
	return nil
}

// resolvePickup maps the client's pickup location reference to the local
// mirror, opportunistically refreshing the mirror on a miss. An unknown
// location does not block checkout; the order carries a note instead.
func (s *orderService) resolvePickup(ctx context.Context, deliveryMethod, externalID string) (*uuid.UUID, string, error) {
	if deliveryMethod != model.DeliveryMethodPickup || externalID == "" {
		return nil, "", nil
	}

	loc, err := s.pickups.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, "", err
	}
	if loc == nil {
		if locations, fetchErr := s.pickupSource.FetchPickupLocations(ctx); fetchErr != nil {
			s.logger.Warn().Err(fetchErr).Msg("pickup location sync failed")
		} else if upsertErr := s.pickups.Upsert(ctx, locations); upsertErr != nil {
			s.logger.Warn().Err(upsertErr).Msg("pickup location upsert failed")
		} else {
			loc, err = s.pickups.GetByExternalID(ctx, externalID)
			if err != nil {
				return nil, "", err
			}
		}
	}

	if loc == nil {
		s.logger.Warn().Str("external_id", externalID).Msg("pickup location not found")
		return nil, fmt.Sprintf("Pickup location %s could not be resolved at checkout", externalID), nil
	}
	return &loc.ID, "", nil
}

// writeOrder persists customer, order and line items in one transaction.
func (s *orderService) writeOrder(ctx context.Context, req *model.CreatePendingOrderRequest, snapshot *model.ValidatedOrderSnapshot, pickupID *uuid.UUID, note string) (*model.Order, error) {
	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := s.now().UTC()

	customer := &model.Customer{
		ID:         uuid.New(),
		Email:      req.OrderData.Email,
		FirstName:  req.OrderData.FirstName,
		LastName:   req.OrderData.LastName,
		Phone:      req.OrderData.Phone,
		Address1:   req.OrderData.Address1,
		Address2:   req.OrderData.Address2,
		City:       req.OrderData.City,
		Province:   req.OrderData.Province,
		PostalCode: req.OrderData.PostalCode,
		CreatedAt:  now,
	}
	if err := s.orders.CreateCustomer(ctx, tx, customer); err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:               uuid.New(),
		OrderNumber:      req.OrderNumber,
		PaymentIntentID:  req.PaymentIntentID,
		Status:           model.OrderStatusPending,
		PaymentStatus:    model.PaymentStatusPending,
		CustomerID:       customer.ID,
		DeliveryMethod:   snapshot.DeliveryMethod,
		PickupLocationID: pickupID,
		Subtotal:         snapshot.Subtotal,
		Tax:              snapshot.TaxTotal,
		Shipping:         snapshot.ShippingTotal,
		Total:            snapshot.Total,
		Notes:            note,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.orders.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		oi := model.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Price:         item.Price,
			Quantity:      item.Quantity,
			Tax:           item.Tax,
			Total:         item.Total,
			ShippingClass: item.ShippingClass,
		}
		if item.Booking != nil {
			date, timeSlot, party := item.Booking.Date, item.Booking.TimeSlot, item.Booking.PartySize
			oi.BookingDate = &date
			oi.BookingTime = &timeSlot
			oi.PartySize = &party
		}
		items[i] = oi
	}
	if err := s.orders.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// CleanupExpiredIntents sweeps validated snapshots past their expiry.
func (s *orderService) CleanupExpiredIntents(ctx context.Context) (int64, error) {
	swept, err := s.intents.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.Info().Int64("count", swept).Msg("expired payment intents swept")
	}
	return swept, nil
}

func pendingOrderResponse(order *model.Order) *model.CreatePendingOrderResponse {
	return &model.CreatePendingOrderResponse{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	}
}
