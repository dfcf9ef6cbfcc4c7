package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/internal/models/request_models"
	"bettybots/internal/services"
	"bettybots/pkg/utils"
)

type LeadController struct {
	leadService services.LeadServiceInterface
	log         *zap.Logger
}

func NewLeadController(leadService services.LeadServiceInterface, log *zap.Logger) *LeadController {
	return &LeadController{leadService: leadService, log: log}
}

// CaptureLead godoc
// @Summary Leave contact details for the tenant
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body request_models.LeadRequest true "Lead"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lead [post]
func (l *LeadController) CaptureLead(c *gin.Context) {
	var req request_models.LeadRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "error", "invalid-request")
		return
	}

	err := l.leadService.Capture(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		code := utils.StatusOf(err)
		if code == http.StatusInternalServerError {
			l.log.Error("lead capture failed", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
			utils.RespondFailure(c, code, "error", "internal-error")
			return
		}
		utils.RespondFailure(c, code, "error", utils.ReasonOf(err))
		return
	}

	utils.RespondOK(c)
}
