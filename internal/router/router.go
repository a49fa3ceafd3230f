package router

import (
	"net/http"

	"farmstand/internal/handler"
	"farmstand/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	webhookHandler *handler.WebhookHandler,
	cronHandler *handler.CronHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Quote and payment authorization endpoints
	mux.HandleFunc("/api/calculate-taxes", checkoutHandler.CalculateTaxes)
	mux.HandleFunc("/api/shipping/calculate", checkoutHandler.CalculateShipping)
	mux.HandleFunc("/api/payment-intent", checkoutHandler.CreatePaymentIntent)

	// Order lifecycle endpoints
	mux.HandleFunc("/api/orders/create-pending", orderHandler.CreatePending)
	mux.HandleFunc("/api/orders/update-succeeded", orderHandler.UpdateSucceeded)
	mux.HandleFunc("/api/orders/update-failed", orderHandler.UpdateFailed)

	// Payment provider webhook (signature-authenticated, API key exempt)
	mux.HandleFunc("/api/webhooks/stripe", webhookHandler.HandleStripe)

	// Scheduled maintenance (secret-authenticated, API key exempt)
	mux.HandleFunc("/cron/cleanup-expired-intents", cronHandler.CleanupExpiredIntents)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
