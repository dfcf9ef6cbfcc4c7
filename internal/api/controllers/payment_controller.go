package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/internal/models/request_models"
	"bettybots/internal/models/response_models"
	"bettybots/internal/services"
	"bettybots/pkg/utils"
)

// maxWebhookBody matches the limit Stripe documents for event payloads.
const maxWebhookBody = 65536

type PaymentController struct {
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log,
	}
}

// StripeCheckout godoc
// @Summary Create a Stripe Checkout session for a tenant
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.StripeCheckoutRequest true "Tenant"
// @Success 200 {object} response_models.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Router /api/stripe/checkout [post]
func (p *PaymentController) StripeCheckout(c *gin.Context) {
	var request request_models.StripeCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid-request")
		return
	}

	url, err := p.paymentService.CreateStripeCheckout(c.Request.Context(), request.TenantID)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	c.JSON(http.StatusOK, response_models.CheckoutResponse{URL: url})
}

// StripeWebhook godoc
// @Summary Receive Stripe webhook events
// @Tags Payments
// @Accept json
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 400 {string} string "invalid signature, payload or payload too large"
// @Router /webhooks/stripe [post]
func (p *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			p.log.Warn("stripe webhook body too large", zap.Int64("limit", tooLarge.Limit))
			c.String(http.StatusBadRequest, "payload too large")
			return
		}
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	if err := p.paymentService.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		c.String(utils.StatusOf(err), utils.ReasonOf(err))
		return
	}

	c.String(http.StatusOK, "ok")
}

// PayPalVerify godoc
// @Summary Confirm a PayPal subscription approved in the browser
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.PayPalVerifyRequest true "Tenant and PayPal subscription id"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]interface{}
// @Router /api/paypal/verify [post]
func (p *PaymentController) PayPalVerify(c *gin.Context) {
	var request request_models.PayPalVerifyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "reason", "invalid-request")
		return
	}

	if err := p.paymentService.VerifyPayPal(c.Request.Context(), request.TenantID, request.SubscriptionID); err != nil {
		code := utils.StatusOf(err)
		if code == http.StatusInternalServerError {
			p.log.Error("paypal verify failed", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
			utils.RespondFailure(c, code, "reason", "internal-error")
			return
		}
		utils.RespondFailure(c, code, "reason", utils.ReasonOf(err))
		return
	}

	utils.RespondOK(c)
}
