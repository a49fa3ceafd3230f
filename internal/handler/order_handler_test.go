package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmstand/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_CreatePending_Success(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockReconcileService), zerolog.Nop())

	orders.On("CreatePendingOrder", mock.Anything, mock.MatchedBy(func(req *model.CreatePendingOrderRequest) bool {
		return req.OrderNumber == "FS-20260828-3F07A1" && req.PaymentIntentID == "pi_abc"
	})).Return(&model.CreatePendingOrderResponse{
		OrderID:     "0d9e4a1e-0000-0000-0000-000000000000",
		OrderNumber: "FS-20260828-3F07A1",
		Status:      model.OrderStatusPending,
	}, nil)

	req := postJSON(t, "/api/orders/create-pending", model.CreatePendingOrderRequest{
		OrderNumber:     "FS-20260828-3F07A1",
		PaymentIntentID: "pi_abc",
		OrderData:       model.CustomerFormData{Email: "jess@example.com"},
	})
	rec := httptest.NewRecorder()

	handler.CreatePending(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp model.CreatePendingOrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.OrderStatusPending, resp.Status)
}

func TestOrderHandler_CreatePending_IntentExpired(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockReconcileService), zerolog.Nop())

	orders.On("CreatePendingOrder", mock.Anything, mock.Anything).Return(nil, model.ErrIntentExpired)

	req := postJSON(t, "/api/orders/create-pending", model.CreatePendingOrderRequest{
		OrderNumber:     "FS-20260828-3F07A1",
		PaymentIntentID: "pi_abc",
	})
	rec := httptest.NewRecorder()

	handler.CreatePending(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeIntentExpired, resp.Error)
}

func TestOrderHandler_UpdateSucceeded(t *testing.T) {
	reconcile := new(MockReconcileService)
	handler := NewOrderHandler(new(MockOrderService), reconcile, zerolog.Nop())

	reconcile.On("ReconcileSucceeded", mock.Anything, "FS-20260828-3F07A1", "pi_abc").Return(&model.Order{
		OrderNumber:   "FS-20260828-3F07A1",
		Status:        model.OrderStatusProcessing,
		PaymentStatus: model.PaymentStatusPaid,
	}, nil)

	req := postJSON(t, "/api/orders/update-succeeded", model.OrderUpdateRequest{
		OrderNumber:     "FS-20260828-3F07A1",
		PaymentIntentID: "pi_abc",
	})
	rec := httptest.NewRecorder()

	handler.UpdateSucceeded(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp model.OrderUpdateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.OrderStatusProcessing, resp.Status)
	assert.Equal(t, model.PaymentStatusPaid, resp.PaymentStatus)
}

func TestOrderHandler_UpdateSucceeded_NotVisible(t *testing.T) {
	reconcile := new(MockReconcileService)
	handler := NewOrderHandler(new(MockOrderService), reconcile, zerolog.Nop())

	reconcile.On("ReconcileSucceeded", mock.Anything, "FS-20260828-3F07A1", "pi_abc").Return(nil, model.ErrOrderNotVisible)

	req := postJSON(t, "/api/orders/update-succeeded", model.OrderUpdateRequest{
		OrderNumber:     "FS-20260828-3F07A1",
		PaymentIntentID: "pi_abc",
	})
	rec := httptest.NewRecorder()

	handler.UpdateSucceeded(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeOrderNotVisible, resp.Error)
}

func TestOrderHandler_UpdateFailed(t *testing.T) {
	reconcile := new(MockReconcileService)
	handler := NewOrderHandler(new(MockOrderService), reconcile, zerolog.Nop())

	reconcile.On("ReconcileFailed", mock.Anything, "FS-20260828-3F07A1", "pi_abc", "card_declined").Return(&model.Order{
		OrderNumber:   "FS-20260828-3F07A1",
		Status:        model.OrderStatusCancelled,
		PaymentStatus: model.PaymentStatusFailed,
	}, nil)

	req := postJSON(t, "/api/orders/update-failed", model.OrderUpdateRequest{
		OrderNumber:     "FS-20260828-3F07A1",
		PaymentIntentID: "pi_abc",
		Reason:          "card_declined",
	})
	rec := httptest.NewRecorder()

	handler.UpdateFailed(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp model.OrderUpdateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.OrderStatusCancelled, resp.Status)
}

func TestOrderHandler_Update_MissingFields(t *testing.T) {
	reconcile := new(MockReconcileService)
	handler := NewOrderHandler(new(MockOrderService), reconcile, zerolog.Nop())

	req := postJSON(t, "/api/orders/update-succeeded", model.OrderUpdateRequest{})
	rec := httptest.NewRecorder()

	handler.UpdateSucceeded(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reconcile.AssertNotCalled(t, "ReconcileSucceeded")
}

func TestCronHandler_CleanupExpiredIntents(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewCronHandler(orders, "cron-secret", zerolog.Nop())

	orders.On("CleanupExpiredIntents", mock.Anything).Return(int64(4), nil)

	req := httptest.NewRequest(http.MethodGet, "/cron/cleanup-expired-intents", nil)
	req.Header.Set("X-Cron-Secret", "cron-secret")
	rec := httptest.NewRecorder()

	handler.CleanupExpiredIntents(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(4), resp["deleted"])
}

func TestCronHandler_CleanupExpiredIntents_WrongSecret(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewCronHandler(orders, "cron-secret", zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/cron/cleanup-expired-intents", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	rec := httptest.NewRecorder()

	handler.CleanupExpiredIntents(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	orders.AssertNotCalled(t, "CleanupExpiredIntents")
}
