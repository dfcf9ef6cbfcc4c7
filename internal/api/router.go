package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/api/controllers"
	"bettybots/internal/web"
	"bettybots/pkg/config"
	"bettybots/pkg/middleware"
	"bettybots/pkg/ratelimit"
)

// RouterParams collects everything the router needs from the fx graph.
type RouterParams struct {
	fx.In

	Config  *config.Config
	Log     *zap.Logger
	Limiter ratelimit.Allower

	Pages    *controllers.PageController
	Tenants  *controllers.TenantController
	Payments *controllers.PaymentController
	Chat     *controllers.ChatController
	Leads    *controllers.LeadController
	Health   *controllers.HealthController
}

func NewRouter(p RouterParams) (*gin.Engine, error) {
	if p.Config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.ZapLogger(p.Log))
	r.Use(middleware.Metrics())

	r.SetHTMLTemplate(tpl)
	r.StaticFS("/static", web.Static())

	RegisterRoutes(r, p)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	limited := middleware.RateLimit(p.Limiter, p.Log)

	r.GET("/", p.Pages.Home)
	r.GET("/dashboard", p.Pages.Dashboard)
	r.POST("/dashboard", p.Pages.SaveDashboard)
	r.GET("/pay", p.Pages.Pay)
	r.GET("/bot", p.Pages.Bot)
	r.GET("/t/:tenant_id", p.Pages.HostedWidget)

	r.POST("/webhooks/stripe", p.Payments.StripeWebhook)

	api := r.Group("/api", middleware.CORSMiddleware())
	api.OPTIONS("/*path")
	api.POST("/stripe/checkout", p.Payments.StripeCheckout)
	api.POST("/paypal/verify", limited, p.Payments.PayPalVerify)
	api.POST("/chat", limited, p.Chat.Chat)
	api.POST("/lead", limited, p.Leads.CaptureLead)

	tenants := api.Group("/tenants")
	tenants.POST("", p.Tenants.SaveTenant)
	tenants.GET("/:tenant_id", p.Tenants.GetTenant)

	r.GET("/healthz", p.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
