package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"farmstand/internal/model"
	"farmstand/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order lifecycle HTTP requests.
type OrderHandler struct {
	orders    service.OrderService
	reconcile service.ReconcileService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, reconcile service.ReconcileService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		reconcile: reconcile,
		logger:    logger.With().Str("handler", "order").Logger(),
	}
}

// CreatePending handles POST /api/orders/create-pending requests.
func (h *OrderHandler) CreatePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req model.CreatePendingOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.orders.CreatePendingOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// UpdateSucceeded handles POST /api/orders/update-succeeded requests.
func (h *OrderHandler) UpdateSucceeded(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.reconcileSucceeded)
}

// UpdateFailed handles POST /api/orders/update-failed requests.
func (h *OrderHandler) UpdateFailed(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.reconcileFailed)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request, settle func(r *http.Request, req *model.OrderUpdateRequest) (*model.Order, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req model.OrderUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if strings.TrimSpace(req.OrderNumber) == "" || strings.TrimSpace(req.PaymentIntentID) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "orderNumber and paymentIntentId are required", h.logger)
		return
	}

	order, err := settle(r, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.OrderUpdateResponse{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	})
}

func (h *OrderHandler) reconcileSucceeded(r *http.Request, req *model.OrderUpdateRequest) (*model.Order, error) {
	return h.reconcile.ReconcileSucceeded(r.Context(), req.OrderNumber, req.PaymentIntentID)
}

func (h *OrderHandler) reconcileFailed(r *http.Request, req *model.OrderUpdateRequest) (*model.Order, error) {
	return h.reconcile.ReconcileFailed(r.Context(), req.OrderNumber, req.PaymentIntentID, req.Reason)
}
