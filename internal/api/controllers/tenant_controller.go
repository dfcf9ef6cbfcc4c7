package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/models/request_models"
	"bettybots/internal/models/response_models"
	"bettybots/internal/services"
	"bettybots/pkg/utils"
)

type TenantController struct {
	tenantService       services.TenantServiceInterface
	subscriptionService services.SubscriptionServiceInterface
	log                 *zap.Logger
}

func NewTenantController(
	tenantService services.TenantServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	log *zap.Logger,
) *TenantController {
	return &TenantController{
		tenantService:       tenantService,
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// SaveTenant godoc
// @Summary Create or update a tenant's preferences
// @Description Only the fields present in the body are overwritten
// @Tags Tenants
// @Accept json
// @Produce json
// @Param request body request_models.SavePreferencesRequest true "Tenant preferences"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /api/tenants [post]
func (t *TenantController) SaveTenant(c *gin.Context) {
	var req request_models.SavePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondEnvelopeError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	tenant, err := t.tenantService.SavePreferences(c.Request.Context(), req)
	if err != nil {
		utils.HandleEnvelopeError(c, t.log, err)
		return
	}

	resp, err := t.describe(c.Request.Context(), tenant)
	if err != nil {
		utils.HandleEnvelopeError(c, t.log, err)
		return
	}
	utils.RespondSuccess(c, resp, "Tenant saved successfully")
}

// GetTenant godoc
// @Summary Get a tenant with its subscription
// @Tags Tenants
// @Produce json
// @Param tenant_id path string true "Tenant id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /api/tenants/{tenant_id} [get]
func (t *TenantController) GetTenant(c *gin.Context) {
	tenant, err := t.tenantService.GetTenant(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		utils.HandleEnvelopeError(c, t.log, err)
		return
	}

	resp, err := t.describe(c.Request.Context(), tenant)
	if err != nil {
		utils.HandleEnvelopeError(c, t.log, err)
		return
	}
	utils.RespondSuccess(c, resp, "Tenant retrieved successfully")
}

func (t *TenantController) describe(ctx context.Context, tenant *db_models.Tenant) (*response_models.TenantResponse, error) {
	sub, err := t.subscriptionService.Get(ctx, tenant.TenantID)
	if err != nil {
		return nil, err
	}

	resp := &response_models.TenantResponse{
		TenantID:     tenant.TenantID,
		Name:         tenant.Name,
		Email:        tenant.Email,
		Role:         tenant.Role,
		Color:        tenant.Color,
		AvatarURL:    tenant.AvatarURL,
		PromptCustom: tenant.PromptCustom,
		Welcome:      tenant.Welcome,
		RecentLeads:  len(tenant.Leads),
		Active:       sub.IsActive(),
	}
	if sub != nil {
		resp.Subscription = &response_models.SubscriptionResponse{
			Provider:  string(sub.Provider),
			Status:    string(sub.Status),
			Email:     sub.Email,
			PlanID:    sub.PlanID,
			CreatedAt: utils.FormatUnix(sub.CreatedAt),
			UpdatedAt: utils.FormatUnix(sub.UpdatedAt),
		}
	}
	if resp.Active {
		resp.EmbedSnippet = t.tenantService.EmbedSnippet(tenant)
	}
	return resp, nil
}
