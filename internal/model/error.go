package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string        `json:"error"`
	Message       string        `json:"message"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeDiscrepancy       = "VALIDATION_DISCREPANCY"
	ErrCodeAmountMismatch    = "AMOUNT_MISMATCH"
	ErrCodeIntentNotFound    = "PAYMENT_INTENT_NOT_FOUND"
	ErrCodeIntentExpired     = "PAYMENT_INTENT_EXPIRED"
	ErrCodeIntentMismatch    = "PAYMENT_INTENT_MISMATCH"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeOrderNotVisible   = "ORDER_NOT_FOUND_RETRYABLE"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeUpstreamUnavail   = "UPSTREAM_UNAVAILABLE"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidOrderState = "INVALID_ORDER_STATE"
)

// DomainError carries a machine-readable code alongside the message so
// handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	// ErrAmountMismatch is the final sanity gate: the caller-claimed amount
	// diverged from the authoritative total by more than the relative
	// tolerance. Distinct from the itemized discrepancy path.
	ErrAmountMismatch = NewDomainError(ErrCodeAmountMismatch, "Submitted amount does not match the validated order total")

	// ErrIntentNotFound means no validated snapshot exists for the payment
	// identifier. Validation data cannot be reconstructed from the client,
	// so this is a hard rejection.
	ErrIntentNotFound = NewDomainError(ErrCodeIntentNotFound, "No validated payment intent found for this payment identifier")

	ErrIntentExpired  = NewDomainError(ErrCodeIntentExpired, "Payment authorization is too old to complete checkout")
	ErrIntentMismatch = NewDomainError(ErrCodeIntentMismatch, "Payment authorization metadata does not match this order")

	// ErrOrderNotVisible is the retryable not-found: the order may simply
	// not have become visible yet, and the caller should redeliver.
	ErrOrderNotVisible = NewDomainError(ErrCodeOrderNotVisible, "Order not found; it may be created shortly, retry later")

	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
)
