package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"farmstand/internal/model"
	"farmstand/internal/payment"
	"farmstand/internal/service"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// maxWebhookBody bounds the webhook payload size.
const maxWebhookBody = 64 * 1024

// WebhookHandler handles Stripe webhook deliveries. The webhook path is
// the authoritative reconciliation trigger; client confirmation calls
// are merely the fast path.
type WebhookHandler struct {
	reconcile     service.ReconcileService
	signingSecret string
	logger        zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(reconcile service.ReconcileService, signingSecret string, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconcile:     reconcile,
		signingSecret: signingSecret,
		logger:        logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandleStripe handles POST /api/webhooks/stripe requests.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read request body", h.logger)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeUnauthorised, "webhook signature verification failed", h.logger)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.handleSucceeded(w, r, event)
	case "payment_intent.payment_failed":
		h.handleFailed(w, r, event)
	default:
		h.logger.Debug().Str("type", string(event.Type)).Msg("ignoring webhook event")
		w.WriteHeader(http.StatusOK)
	}
}

func (h *WebhookHandler) handleSucceeded(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	intent, ok := h.parseIntent(w, event)
	if !ok {
		return
	}

	orderNumber := intent.Metadata[payment.MetadataKeyOrderNumber]
	if orderNumber == "" {
		// Not one of ours. Acknowledge so the provider stops retrying.
		h.logger.Warn().Str("payment_intent_id", intent.ID).Msg("succeeded intent without order number metadata")
		w.WriteHeader(http.StatusOK)
		return
	}

	order, err := h.reconcile.ReconcileSucceeded(r.Context(), orderNumber, intent.ID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotVisible) {
			// 500 makes the provider redeliver later, when the pending
			// row should exist.
			writeError(w, http.StatusInternalServerError, model.ErrCodeOrderNotVisible, "order not yet visible", h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("payment_intent_id", intent.ID).
		Msg("webhook reconciled payment success")
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleFailed(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	intent, ok := h.parseIntent(w, event)
	if !ok {
		return
	}

	orderNumber := intent.Metadata[payment.MetadataKeyOrderNumber]
	if orderNumber == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	reason := "payment declined"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}

	_, err := h.reconcile.ReconcileFailed(r.Context(), orderNumber, intent.ID, reason)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			// The order was never created; nothing to cancel.
			h.logger.Warn().
				Str("order_number", orderNumber).
				Str("payment_intent_id", intent.ID).
				Msg("failed payment for unknown order")
			w.WriteHeader(http.StatusOK)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) parseIntent(w http.ResponseWriter, event stripe.Event) (*stripe.PaymentIntent, bool) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to parse webhook payload", h.logger)
		return nil, false
	}
	return &intent, true
}
