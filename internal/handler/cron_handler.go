package handler

import (
	"crypto/subtle"
	"net/http"

	"farmstand/internal/model"
	"farmstand/internal/service"

	"github.com/rs/zerolog"
)

// CronHandler handles scheduled maintenance requests. These endpoints
// are guarded by a shared secret instead of the API key so the
// scheduler needs no access to the client credential.
type CronHandler struct {
	orders service.OrderService
	secret string
	logger zerolog.Logger
}

// NewCronHandler creates a new cron handler.
func NewCronHandler(orders service.OrderService, secret string, logger zerolog.Logger) *CronHandler {
	return &CronHandler{
		orders: orders,
		secret: secret,
		logger: logger.With().Str("handler", "cron").Logger(),
	}
}

// CleanupExpiredIntents handles GET /cron/cleanup-expired-intents requests.
func (h *CronHandler) CleanupExpiredIntents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	provided := r.Header.Get("X-Cron-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid cron secret", h.logger)
		return
	}

	swept, err := h.orders.CleanupExpiredIntents(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": swept})
}
