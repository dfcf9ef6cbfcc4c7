package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/models/request_models"
	"bettybots/internal/services"
	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

// PageController serves the server-rendered signup, payment and bot pages.
type PageController struct {
	tenantService       services.TenantServiceInterface
	subscriptionService services.SubscriptionServiceInterface
	cfg                 *config.Config
	log                 *zap.Logger
}

func NewPageController(
	tenantService services.TenantServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
	cfg *config.Config,
	log *zap.Logger,
) *PageController {
	return &PageController{
		tenantService:       tenantService,
		subscriptionService: subscriptionService,
		cfg:                 cfg,
		log:                 log,
	}
}

type dashboardView struct {
	Brand        string
	Error        string
	Form         request_models.SavePreferencesRequest
	Personas     []services.Persona
	Role         string
	Color        string
	Avatar       string
	Welcome      string
	PromptCustom string
}

func (p *PageController) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/dashboard")
}

func (p *PageController) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", p.dashboardView(request_models.SavePreferencesRequest{}, ""))
}

func (p *PageController) SaveDashboard(c *gin.Context) {
	var form request_models.SavePreferencesRequest
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "dashboard.html", p.dashboardView(form, "Formulaire invalide."))
		return
	}

	tenant, err := p.tenantService.SavePreferences(c.Request.Context(), form)
	if err != nil {
		code := utils.StatusOf(err)
		msg := formErrorMessage(utils.ReasonOf(err))
		if code == http.StatusInternalServerError {
			p.log.Error("save preferences failed", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
			msg = "Une erreur est survenue, réessayez."
		}
		c.HTML(code, "dashboard.html", p.dashboardView(form, msg))
		return
	}

	c.Redirect(http.StatusSeeOther, "/pay?tenant="+url.QueryEscape(tenant.TenantID))
}

func (p *PageController) Pay(c *gin.Context) {
	tenant, ok := p.lookupTenant(c, c.Query("tenant"))
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "pay.html", gin.H{
		"Brand":          p.cfg.BrandName,
		"Tenant":         tenant,
		"StripePriceID":  p.cfg.StripePriceID,
		"PayPalClientID": p.cfg.PayPalClientID,
		"PayPalPlanID":   p.cfg.PayPalPlanID,
	})
}

func (p *PageController) Bot(c *gin.Context) {
	tenant, ok := p.lookupTenant(c, c.Query("tenant"))
	if !ok {
		return
	}

	active, err := p.subscriptionService.IsActive(c.Request.Context(), tenant.TenantID)
	if err != nil {
		p.serverError(c, err)
		return
	}
	if !active {
		c.Redirect(http.StatusFound, "/pay?tenant="+url.QueryEscape(tenant.TenantID))
		return
	}

	c.HTML(http.StatusOK, "bot.html", gin.H{
		"Brand":   p.cfg.BrandName,
		"BaseURL": p.cfg.BaseURL,
		"Tenant":  tenant,
		"Snippet": p.tenantService.EmbedSnippet(tenant),
	})
}

// HostedWidget is the standalone chat page for tenants without a website.
func (p *PageController) HostedWidget(c *gin.Context) {
	tenant, ok := p.lookupTenant(c, c.Param("tenant_id"))
	if !ok {
		return
	}

	active, err := p.subscriptionService.IsActive(c.Request.Context(), tenant.TenantID)
	if err != nil {
		p.serverError(c, err)
		return
	}
	if !active {
		c.HTML(http.StatusPaymentRequired, "inactive.html", gin.H{
			"Brand":    p.cfg.BrandName,
			"TenantID": tenant.TenantID,
		})
		return
	}

	c.HTML(http.StatusOK, "widget.html", gin.H{
		"BaseURL": p.cfg.BaseURL,
		"Tenant":  tenant,
		"Persona": services.PersonaFor(tenant.Role, p.cfg.DefaultRole),
	})
}

// lookupTenant redirects to the dashboard when the tenant is unknown.
func (p *PageController) lookupTenant(c *gin.Context, tenantID string) (*db_models.Tenant, bool) {
	tenant, err := p.tenantService.GetTenant(c.Request.Context(), tenantID)
	if errors.Is(err, utils.ErrTenantNotFound) {
		c.Redirect(http.StatusFound, "/dashboard")
		return nil, false
	}
	if err != nil {
		p.serverError(c, err)
		return nil, false
	}
	return tenant, true
}

func (p *PageController) serverError(c *gin.Context, err error) {
	p.log.Error("page failed",
		zap.String("trace_id", c.GetString("trace_id")),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal server error")
}

func (p *PageController) dashboardView(form request_models.SavePreferencesRequest, errMsg string) dashboardView {
	v := dashboardView{
		Brand:    p.cfg.BrandName,
		Error:    errMsg,
		Form:     form,
		Personas: services.Personas(),
		Role:     services.PersonaFor(deref(form.Role), p.cfg.DefaultRole).Key,
		Color:    p.cfg.DefaultColor,
	}
	if c := deref(form.Color); c != "" {
		v.Color = c
	}
	v.Avatar = deref(form.AvatarURL)
	v.Welcome = deref(form.Welcome)
	v.PromptCustom = deref(form.PromptCustom)
	return v
}

func formErrorMessage(reason string) string {
	switch reason {
	case "missing-name":
		return "Merci d'indiquer le nom de votre activité."
	case "invalid-email":
		return "Cette adresse e-mail semble invalide."
	case "invalid-color":
		return "Couleur invalide (format #RRGGBB)."
	case utils.ErrInvalidTenantID.Error():
		return "Identifiant invalide."
	default:
		return reason
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
