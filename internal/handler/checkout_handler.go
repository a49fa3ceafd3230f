package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"farmstand/internal/model"
	"farmstand/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles quote and payment intent HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// CalculateTaxes handles POST /api/calculate-taxes requests.
func (h *CheckoutHandler) CalculateTaxes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req model.TaxQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.CalculateTaxes(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "required") {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CalculateShipping handles POST /api/shipping/calculate requests.
func (h *CheckoutHandler) CalculateShipping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req model.ShippingQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.CalculateShipping(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "required") {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreatePaymentIntent handles POST /api/payment-intent requests.
func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req model.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.CreatePaymentIntent(r.Context(), &req)
	if err != nil {
		var discErr *service.DiscrepancyError
		if errors.As(err, &discErr) {
			h.logger.Warn().Int("discrepancies", len(discErr.Result.Discrepancies)).Msg("cart validation rejected")
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
				Error:         model.ErrCodeDiscrepancy,
				Message:       "Cart does not match catalog state",
				Discrepancies: discErr.Result.Discrepancies,
			})
			return
		}
		if strings.Contains(err.Error(), "required") ||
			strings.Contains(err.Error(), "must contain") {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
