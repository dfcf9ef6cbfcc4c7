package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondEnvelopeError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// RespondError writes the flat {"error": message} shape used by the payment
// and chat endpoints.
func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// RespondFailure writes {"ok": false, key: reason}.
func RespondFailure(c *gin.Context, code int, key, reason string) {
	c.JSON(code, gin.H{"ok": false, key: reason})
}

func RespondOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StatusOf maps a service error onto the HTTP status the API documents.
func StatusOf(err error) int {
	var ve *ValidationError
	var vf *VerificationError
	switch {
	case errors.As(err, &ve), errors.As(err, &vf):
		return http.StatusBadRequest
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSubscriptionInactive):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrStripeNotConfigured),
		errors.Is(err, ErrPayPalNotConfigured),
		errors.Is(err, ErrWebhookSecretMissing),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrInvalidTenantID),
		errors.Is(err, ErrCheckoutSessionFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError converts err to {"error": ...}. Internal errors are
// logged and hidden from the client.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("trace_id", c.GetString("trace_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		RespondError(c, code, "Internal server error")
		return
	}
	RespondError(c, code, ReasonOf(err))
}

// HandleEnvelopeError is HandleServiceError for endpoints that answer with
// the APIResponse envelope.
func HandleEnvelopeError(c *gin.Context, log *zap.Logger, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("trace_id", c.GetString("trace_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		RespondEnvelopeError(c, code, "Internal server error")
		return
	}
	RespondEnvelopeError(c, code, ReasonOf(err))
}
