package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bettybots_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_stripe_webhook_events_total",
		Help: "Stripe webhook deliveries by event type and result",
	}, []string{"type", "result"})

	paypalVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_paypal_verifications_total",
		Help: "PayPal subscription verifications by result",
	}, []string{"result"})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_emails_total",
		Help: "Notification emails by kind and result",
	}, []string{"kind", "result"})

	chatCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_chat_completions_total",
		Help: "Chat replies by provider and result",
	}, []string{"provider", "result"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bettybots_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"route"})

	leadsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bettybots_leads_captured_total",
		Help: "Leads appended to tenant logs",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveWebhook counts a Stripe webhook delivery. result is one of
// "processed", "ignored", "rejected" or "error".
func ObserveWebhook(eventType, result string) {
	if eventType == "" {
		eventType = "unknown"
	}
	webhookEvents.WithLabelValues(eventType, result).Inc()
}

func ObservePayPalVerification(result string) {
	paypalVerifications.WithLabelValues(result).Inc()
}

func ObserveEmail(kind string, sent bool) {
	emailsSent.WithLabelValues(kind, resultLabel(sent)).Inc()
}

func ObserveChatCompletion(provider string, ok bool) {
	chatCompletions.WithLabelValues(provider, resultLabel(ok)).Inc()
}

func ObserveRateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}

func IncrementLeads() {
	leadsCaptured.Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
