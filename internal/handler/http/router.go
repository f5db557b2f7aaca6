package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/service"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/health"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/httputil"
	"github.com/juberthrdzz/vapi-voice-agent/pkg/middleware"
)

// NewRouter creates a chi router with all voice agent routes registered.
func NewRouter(
	m *menu.Menu,
	cartService *service.CartService,
	voiceService *service.VoiceService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("voice-agent"))
	r.Use(middleware.Tracing("voice-agent"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	menuHandler := NewMenuHandler(m, logger)
	cartHandler := NewCartHandler(cartService, logger)
	orderHandler := NewOrderHandler(cartService, logger)
	voiceHandler := NewVoiceHandler(voiceService, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
			"service": "restaurant-voice-agent",
			"status":  "running",
		}})
	})

	r.Get("/menu", menuHandler.GetMenu)
	r.Get("/menu/{category}", menuHandler.GetCategory)

	r.Post("/cart/add", cartHandler.AddItem)
	r.Post("/cart/remove", cartHandler.RemoveItem)
	r.Get("/cart/{sessionID}", cartHandler.GetCart)
	r.Post("/cart/{sessionID}/checkout", cartHandler.Checkout)

	r.Get("/orders/{orderID}", orderHandler.GetOrder)
	r.Patch("/orders/{orderID}/status", orderHandler.UpdateStatus)

	r.Post("/voice/query", voiceHandler.ProcessQuery)

	return r
}
