package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"farmstand/internal/model"
	"farmstand/internal/payment"
	"farmstand/internal/repository"
	"farmstand/internal/tax"
	"farmstand/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// amountGateTolerance is the relative tolerance for the final amount
// gate. The client already received the validated total, so anything
// beyond rounding drift means the submission is stale or tampered.
const amountGateTolerance = 0.01

// DiscrepancyError reports a cart that diverged from authoritative
// state. It carries the full validation result so the caller can render
// every divergence in one round trip.
type DiscrepancyError struct {
	Result *validation.Result
}

func (e *DiscrepancyError) Error() string {
	return fmt.Sprintf("cart validation found %d discrepancies", len(e.Result.Discrepancies))
}

type checkoutService struct {
	validator CartValidator
	shipping  validation.ShippingResolver
	taxCalc   validation.TaxCalculator
	gateway   payment.Gateway
	intents   repository.IntentRepository
	intentTTL time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	validator CartValidator,
	shipping validation.ShippingResolver,
	taxCalc validation.TaxCalculator,
	gateway payment.Gateway,
	intents repository.IntentRepository,
	intentTTL time.Duration,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		validator: validator,
		shipping:  shipping,
		taxCalc:   taxCalc,
		gateway:   gateway,
		intents:   intents,
		intentTTL: intentTTL,
		now:       time.Now,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// CalculateTaxes quotes taxes for the submitted items. Quotes work from
// client-submitted prices; the authoritative recomputation happens at
// payment intent creation.
func (s *checkoutService) CalculateTaxes(ctx context.Context, req *model.TaxQuoteRequest) (*tax.Result, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("items are required")
	}

	result := s.taxCalc.Calculate(quoteItems(req.Items), req.Province, 0)
	return &result, nil
}

// CalculateShipping quotes the per-order shipping cost for a cart.
func (s *checkoutService) CalculateShipping(ctx context.Context, req *model.ShippingQuoteRequest) (*model.ShippingQuoteResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cart is required")
	}

	cost := s.shipping.Cost(ctx, quoteItems(req.Items), req.DeliveryMethod, req.Province)
	return &model.ShippingQuoteResponse{ShippingCost: cost}, nil
}

// CreatePaymentIntent runs the full pre-payment pipeline: validate the
// cart, gate the claimed amount against the authoritative total, create
// the payment authorization and persist the validated snapshot under
// the payment identifier.
func (s *checkoutService) CreatePaymentIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntentResponse, error) {
	result, err := s.validator.Validate(ctx, &req.Cart)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		s.logger.Warn().
			Int("discrepancies", len(result.Discrepancies)).
			Msg("cart validation failed")
		return nil, &DiscrepancyError{Result: result}
	}

	snapshot := result.Snapshot

	// Final gate: the client claims an amount it computed from the same
	// validated data, so any real divergence is a stale or forged total.
	if !amountWithinTolerance(req.Amount, snapshot.Total) {
		s.logger.Warn().
			Float64("claimed", req.Amount).
			Float64("validated", snapshot.Total).
			Msg("claimed amount diverges from validated total")
		return nil, model.ErrAmountMismatch
	}

	orderNumber := generateOrderNumber(s.now())
	amountCents := int64(math.Round(snapshot.Total * 100))

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.CreateIntentRequest{
		AmountCents:    amountCents,
		Currency:       "cad",
		IdempotencyKey: idempotencyKey,
		Metadata: map[string]string{
			payment.MetadataKeyOrderNumber:     orderNumber,
			payment.MetadataKeyValidatedAmount: strconv.FormatInt(amountCents, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	// A retried submission replays its idempotency key and the provider
	// hands back the original intent. The snapshot and order number for
	// that intent are already on record; return them instead of the
	// freshly generated ones, which the intent's metadata never saw.
	existing, err := s.intents.GetByID(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info().
			Str("payment_intent_id", intent.ID).
			Str("order_number", existing.OrderNumber).
			Msg("payment intent replayed, returning stored snapshot")
		return &model.PaymentIntentResponse{
			ClientSecret:    intent.ClientSecret,
			OrderNumber:     existing.OrderNumber,
			PaymentIntentID: intent.ID,
			ValidatedData:   &existing.Snapshot,
		}, nil
	}

	createdAt := s.now()
	validated := &model.ValidatedPaymentIntent{
		PaymentIntentID: intent.ID,
		OrderNumber:     orderNumber,
		Snapshot:        *snapshot,
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(s.intentTTL),
	}
	if err := s.intents.Save(ctx, validated); err != nil {
		return nil, fmt.Errorf("failed to persist validated snapshot: %w", err)
	}

	s.logger.Info().
		Str("payment_intent_id", intent.ID).
		Str("order_number", orderNumber).
		Int64("amount_cents", amountCents).
		Msg("payment intent created")

	return &model.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		OrderNumber:     orderNumber,
		PaymentIntentID: intent.ID,
		ValidatedData:   snapshot,
	}, nil
}

// amountWithinTolerance compares the claimed amount to the validated
// total, allowing 1% relative drift but never less than one cent.
func amountWithinTolerance(claimed, validated float64) bool {
	tolerance := math.Max(0.01, validated*amountGateTolerance)
	return math.Abs(claimed-validated) <= tolerance+1e-9
}

// generateOrderNumber builds a human-facing order number such as
// FS-20260828-3F07A1. The suffix comes from a fresh uuid, so collisions
// within a day are as unlikely as uuid collisions.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("FS-%s-%s", now.UTC().Format("20060102"), suffix)
}

// quoteItems lifts client-submitted cart items into the validated item
// shape the calculators consume, trusting the client values as a quote.
func quoteItems(items []model.CartItem) []model.ValidatedItem {
	out := make([]model.ValidatedItem, len(items))
	for i, item := range items {
		out[i] = model.ValidatedItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        item.Quantity,
			TaxStatus:       item.TaxStatus,
			ShippingClass:   item.ShippingClass,
			ShippingTaxable: item.ShippingTaxable,
			Type:            item.Type,
			Total:           item.Price * float64(item.Quantity),
			Booking:         item.Booking,
		}
	}
	return out
}
