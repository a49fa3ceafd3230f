package service

import (
	"context"
	"fmt"
	"time"

	"farmstand/internal/model"
	"farmstand/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// lookupAttempts bounds the retried order lookup in ReconcileSucceeded.
// With the exponential schedule below the last attempt happens roughly
// 7.5 seconds after the first, enough for the pending row to land when
// the webhook outruns order creation.
const lookupAttempts = 5

type reconcileService struct {
	orders repository.OrderRepository
	mirror OrderMirror
	sleep  func(time.Duration)
	logger zerolog.Logger
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(orders repository.OrderRepository, mirror OrderMirror, logger zerolog.Logger) ReconcileService {
	return &reconcileService{
		orders: orders,
		mirror: mirror,
		sleep:  time.Sleep,
		logger: logger.With().Str("service", "reconcile").Logger(),
	}
}

// ReconcileSucceeded settles a successful payment: the pending order
// moves to processing/paid and is mirrored to the commerce backend. A
// mirror failure never loses the payment outcome; the order still goes
// terminal, with a note recording the failed push.
func (s *reconcileService) ReconcileSucceeded(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error) {
	order, err := s.findOrderWithRetry(ctx, orderNumber, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		s.logger.Info().
			Str("order_number", orderNumber).
			Str("status", order.Status).
			Msg("order already terminal, nothing to reconcile")
		return order, nil
	}

	// Claim the terminal transition before touching the upstream mirror.
	// When the webhook and the client callback race, both read a pending
	// row; only the winner of the status-guarded UPDATE gets to push the
	// order upstream, so one payment mirrors at most once.
	updated, err := s.orders.MarkTerminal(ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusPaid, nil, "")
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent reconciliation won. Reload and report its outcome.
		current, getErr := s.orders.GetByNumberAndIntent(ctx, orderNumber, paymentIntentID)
		if getErr != nil {
			return nil, getErr
		}
		return current, nil
	}

	order.Status = model.OrderStatusProcessing
	order.PaymentStatus = model.PaymentStatusPaid

	wooOrderID, note := s.mirrorOrder(ctx, order)
	if wooOrderID != nil || note != "" {
		if recErr := s.orders.RecordMirrorResult(ctx, order.ID, wooOrderID, note); recErr != nil {
			// The payment outcome is already settled; the mirror record is
			// an operator follow-up at worst.
			s.logger.Error().
				Err(recErr).
				Str("order_number", orderNumber).
				Msg("failed to record mirror result")
		}
	}
	order.WooOrderID = wooOrderID

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("payment_intent_id", paymentIntentID).
		Msg("order reconciled as paid")

	return order, nil
}

// ReconcileFailed settles a failed payment: the pending order moves to
// cancelled/failed with the provider's failure reason on record. No
// retry here; a failed payment has no creation race to ride out.
func (s *reconcileService) ReconcileFailed(ctx context.Context, orderNumber, paymentIntentID, reason string) (*model.Order, error) {
	order, err := s.orders.GetByNumberAndIntent(ctx, orderNumber, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.Terminal() {
		s.logger.Info().
			Str("order_number", orderNumber).
			Str("status", order.Status).
			Msg("order already terminal, nothing to reconcile")
		return order, nil
	}

	note := "Payment failed"
	if reason != "" {
		note = fmt.Sprintf("Payment failed: %s", reason)
	}

	updated, err := s.orders.MarkTerminal(ctx, order.ID, model.OrderStatusCancelled, model.PaymentStatusFailed, nil, note)
	if err != nil {
		return nil, err
	}
	if !updated {
		current, getErr := s.orders.GetByNumberAndIntent(ctx, orderNumber, paymentIntentID)
		if getErr != nil {
			return nil, getErr
		}
		return current, nil
	}

	order.Status = model.OrderStatusCancelled
	order.PaymentStatus = model.PaymentStatusFailed

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("payment_intent_id", paymentIntentID).
		Str("reason", reason).
		Msg("order reconciled as failed")

	return order, nil
}

// findOrderWithRetry looks the order up under an exponential backoff
// schedule. Returns ErrOrderNotVisible once all attempts are spent, so
// the caller can signal a retryable condition.
func (s *reconcileService) findOrderWithRetry(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 8 * time.Second
	b.MaxElapsedTime = 0

	for attempt := 1; ; attempt++ {
		order, err := s.orders.GetByNumberAndIntent(ctx, orderNumber, paymentIntentID)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
		if attempt >= lookupAttempts {
			s.logger.Warn().
				Str("order_number", orderNumber).
				Str("payment_intent_id", paymentIntentID).
				Int("attempts", attempt).
				Msg("order not visible after retries")
			return nil, model.ErrOrderNotVisible
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wait := b.NextBackOff()
		s.logger.Debug().
			Str("order_number", orderNumber).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("order not yet visible, backing off")
		s.sleep(wait)
	}
}

// mirrorOrder pushes the order upstream. Failures degrade to a note on
// the local record; the local order remains the source of truth.
func (s *reconcileService) mirrorOrder(ctx context.Context, order *model.Order) (*int64, string) {
	items, err := s.orders.GetItems(ctx, order.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to load order items for mirroring")
		return nil, fmt.Sprintf("Upstream mirror skipped: %v", err)
	}
	customer, err := s.orders.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to load customer for mirroring")
		return nil, fmt.Sprintf("Upstream mirror skipped: %v", err)
	}

	wooID, err := s.mirror.CreateOrder(ctx, order, items, customer)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to mirror order upstream")
		return nil, fmt.Sprintf("Upstream mirror failed: %v", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int64("woo_order_id", wooID).
		Msg("order mirrored upstream")

	return &wooID, ""
}
