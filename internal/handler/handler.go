package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"farmstand/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// statusForCode maps machine-readable error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeMissingField, model.ErrCodeInvalidQuantity,
		model.ErrCodeAmountMismatch, model.ErrCodeDiscrepancy:
		return http.StatusBadRequest
	case model.ErrCodeIntentNotFound, model.ErrCodeOrderNotFound, model.ErrCodeOrderNotVisible:
		return http.StatusNotFound
	case model.ErrCodeIntentExpired, model.ErrCodeIntentMismatch, model.ErrCodeInvalidOrderState:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeUpstreamUnavail:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service-layer error, translating domain
// errors to their HTTP status and hiding everything else behind a 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}
	logger.Error().Err(err).Msg("unexpected service error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}
