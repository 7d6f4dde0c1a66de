// Package metrics instruments the connector subsystem on a dedicated
// prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// TokenAcquisitions counts vendor token calls by strategy
	// (refresh, password, session) and outcome (ok, error).
	TokenAcquisitions = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "vmsgate_token_acquisitions_total",
		Help: "Vendor token acquisition attempts by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	TokenCacheHits = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "vmsgate_token_cache_hits_total",
		Help: "Calls served from the cached token with no network call.",
	})

	DispatchRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "vmsgate_dispatch_requests_total",
		Help: "Vendor API requests by HTTP method and status code.",
	}, []string{"method", "code"})

	AuthRetries = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "vmsgate_dispatch_auth_retries_total",
		Help: "One-shot retries after an auth-class vendor failure.",
	})

	MediaPlans = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "vmsgate_media_plans_total",
		Help: "Negotiated media plans by transport and auth mode.",
	}, []string{"transport", "auth_mode"})

	TicketFallbacks = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "vmsgate_media_ticket_fallbacks_total",
		Help: "Media plans that fell back to bearer auth after ticket issuance failed.",
	})

	ProxiedBytes = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "vmsgate_proxy_bytes_total",
		Help: "Media bytes relayed to callers.",
	})
)

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
