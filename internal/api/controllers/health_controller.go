package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bettybots/internal/models/response_models"
	"bettybots/pkg/utils"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Healthz godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response_models.HealthResponse
// @Router /healthz [get]
func (h *HealthController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, response_models.HealthResponse{OK: true, TS: utils.NowUnixSeconds()})
}
