package utils

import (
	"errors"
	"fmt"
)

var (
	ErrTenantNotFound        = errors.New("unknown-tenant")
	ErrSubscriptionInactive  = errors.New("subscription-inactive")
	ErrStripeNotConfigured   = errors.New("stripe not configured (missing secret key or price)")
	ErrPayPalNotConfigured   = errors.New("paypal not configured (missing client id or secret)")
	ErrWebhookSecretMissing  = errors.New("webhook secret missing")
	ErrInvalidSignature      = errors.New("invalid stripe signature")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
	ErrLookupFailed          = errors.New("lookup-failed")
	ErrDatabaseError         = errors.New("database error")
	ErrInvalidTenantID       = errors.New("invalid tenant id")
	ErrRateLimited           = errors.New("rate-limited")
	ErrCheckoutSessionFailed = errors.New("checkout session creation failed")
)

// ValidationError reports a rejected input with a machine-readable reason
// such as "missing-name" or "invalid-email".
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// VerificationError is returned when a payment provider refuses to confirm a
// subscription. Reason is the provider status or a short tag.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the machine-readable reason carried by err.
func ReasonOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var vf *VerificationError
	if errors.As(err, &vf) {
		return vf.Reason
	}
	return err.Error()
}
