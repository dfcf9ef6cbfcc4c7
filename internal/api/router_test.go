package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"bettybots/internal/api/controllers"
	"bettybots/internal/models/db_models"
	"bettybots/internal/repositories"
	"bettybots/internal/services"
	"bettybots/pkg/config"
	"bettybots/pkg/ratelimit"
	"bettybots/pkg/utils"
)

const webhookSecret = "whsec_router_test"

type testApp struct {
	router  *gin.Engine
	subRepo repositories.SubscriptionRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GinMode:             gin.TestMode,
		BaseURL:             "http://bots.test",
		BrandName:           "Betty Bots",
		StripeSecretKey:     "sk_test_x",
		StripePriceID:       "price_test",
		StripeWebhookSecret: webhookSecret,
		PayPalAPIBase:       "http://127.0.0.1:1",
		ProviderTimeout:     time.Second,
		DefaultRole:         "psychologue",
		DefaultColor:        "#2563eb",
	}
	log := zap.NewNop()

	root := t.TempDir()
	tenantRepo, err := repositories.NewFileTenantRepository(root, db_models.TenantDefaults{Role: cfg.DefaultRole, Color: cfg.DefaultColor})
	require.NoError(t, err)
	subRepo, err := repositories.NewFileSubscriptionRepository(root)
	require.NoError(t, err)

	tenantSvc := services.NewTenantService(tenantRepo, cfg, log)
	subSvc := services.NewSubscriptionService(subRepo, log)
	mail := services.NewSMTPMailService(cfg, log)
	payments := services.NewPaymentService(tenantSvc, subSvc,
		services.NewStripeAdapter(cfg, log), services.NewPayPalAdapter(cfg, log),
		mail, cfg.PayPalPlanID, log)

	limiter := ratelimit.NewLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)

	router, err := NewRouter(RouterParams{
		Config:   cfg,
		Log:      log,
		Limiter:  limiter,
		Pages:    controllers.NewPageController(tenantSvc, subSvc, cfg, log),
		Tenants:  controllers.NewTenantController(tenantSvc, subSvc, log),
		Payments: controllers.NewPaymentController(payments, log),
		Chat:     controllers.NewChatController(services.NewChatService(tenantSvc, subSvc, nil, cfg, log), log),
		Leads:    controllers.NewLeadController(services.NewLeadService(tenantRepo, mail, log), log),
		Health:   controllers.NewHealthController(),
	})
	require.NoError(t, err)

	return &testApp{router: router, subRepo: subRepo}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) signup(t *testing.T, name, email string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"name": {name}, "email": {email}, "role": {""}, "color": {""}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) webhook(t *testing.T, secret string, event map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	event["object"] = "event"
	event["api_version"] = stripe.APIVersion
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(signed.Payload)))
	req.Header.Set("Stripe-Signature", signed.Header)
	return a.do(req)
}

func checkoutCompleted(tenantID string) map[string]any {
	return map[string]any{
		"id":   "evt_e2e",
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"object":              "checkout.session",
			"client_reference_id": tenantID,
			"customer_details":    map[string]any{"email": "a@b.com"},
		}},
	}
}

func TestSignupPayAndUnlockBot(t *testing.T) {
	app := newTestApp(t)

	w := app.signup(t, "Ana", "a@b.com")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/pay?tenant=a-b-com", w.Header().Get("Location"))

	w = app.get("/api/tenants/a-b-com")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Status string `json:"status"`
		Data   struct {
			TenantID string `json:"tenant_id"`
			Role     string `json:"role"`
			Color    string `json:"color"`
			Active   bool   `json:"active"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "psychologue", env.Data.Role)
	assert.Equal(t, "#2563eb", env.Data.Color)
	assert.False(t, env.Data.Active)

	w = app.get("/pay?tenant=a-b-com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "price_test")

	w = app.get("/bot?tenant=a-b-com")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/pay?tenant=a-b-com", w.Header().Get("Location"))

	w = app.webhook(t, webhookSecret, checkoutCompleted("a-b-com"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = app.get("/bot?tenant=a-b-com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/static/embed.js")
	assert.Contains(t, w.Body.String(), `data-tenant="a-b-com"`)

	w = app.get("/t/a-b-com")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookBadSignatureDoesNotActivate(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Ana", "a@b.com")

	w := app.webhook(t, "whsec_other", checkoutCompleted("a-b-com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.get("/bot?tenant=a-b-com")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestWebhookOversizedBody(t *testing.T) {
	app := newTestApp(t)

	body := `{"pad":"` + strings.Repeat("x", 70*1024) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := app.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "payload too large", w.Body.String())
}

func TestUnknownTenantRouting(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/pay?tenant=ghost", "/bot?tenant=ghost", "/bot", "/t/ghost"} {
		w := app.get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"), path)
	}

	w := app.postJSON("/api/chat", `{"tenant":"ghost","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown-tenant"}`, w.Body.String())

	w = app.postJSON("/api/lead", `{"tenant":"ghost","name":"Jean","email":"j@mail.fr","need":"info"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"unknown-tenant"}`, w.Body.String())

	w = app.postJSON("/api/stripe/checkout", `{"tenant":"ghost"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unknown-tenant"}`, w.Body.String())

	w = app.get("/api/tenants/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGatedEndpointsForUnpaidTenant(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Ana", "a@b.com")

	w := app.get("/t/a-b-com")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = app.postJSON("/api/chat", `{"tenant":"a-b-com","message":"Bonjour"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error":"subscription-inactive"}`, w.Body.String())

	app.webhook(t, webhookSecret, checkoutCompleted("a-b-com"))

	w = app.postJSON("/api/chat", `{"tenant":"a-b-com","message":"Bonjour"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":`+mustJSON(t, services.FallbackReply)+`}`, w.Body.String())
}

func TestLeadEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Ana", "a@b.com")

	w := app.postJSON("/api/lead", `{"tenant":"a-b-com","name":"Jean","email":"nope","need":"info"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid-email"}`, w.Body.String())

	w = app.postJSON("/api/lead", `{"tenant":"a-b-com","name":"Jean","email":"j@mail.fr","need":""}`)
	assert.JSONEq(t, `{"ok":false,"error":"missing-need"}`, w.Body.String())

	w = app.postJSON("/api/lead", `{"tenant":"a-b-com","name":"Jean","email":"j@mail.fr","need":"Rappel"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestPayPalVerifyValidation(t *testing.T) {
	app := newTestApp(t)

	w := app.postJSON("/api/paypal/verify", `{"tenant":"a-b-com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"reason":"missing-tenant-or-subscription"}`, w.Body.String())
}

func TestSignupValidationRerendersForm(t *testing.T) {
	app := newTestApp(t)

	w := app.signup(t, "Ana", "not-an-email")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalide")
	assert.Contains(t, w.Body.String(), `value="Ana"`)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		OK bool  `json:"ok"`
		TS int64 `json:"ts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.True(t, health.OK)
	assert.InDelta(t, utils.NowUnixSeconds(), health.TS, 5)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = app.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bettybots_http_requests_total")

	w = app.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = app.get("/static/embed.js")
	assert.Equal(t, http.StatusOK, w.Code)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestWidgetPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://cabinet.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := app.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cabinet.example", w.Header().Get("Access-Control-Allow-Origin"))
}
