package server

import (
	"fmt"

	"github.com/PartyProtect/revive-your-hair-website/internal/handler"
	"github.com/PartyProtect/revive-your-hair-website/internal/metrics"
	"github.com/PartyProtect/revive-your-hair-website/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// TrackingPaths are the mount points of the tracking endpoint. The second
// keeps clients built against the serverless function URL working.
var TrackingPaths = []string{"/tracking", "/.netlify/functions/tracking"}

type Handlers struct {
	Tracking *handler.TrackingHandler
	Health   *handler.HealthHandler
}

// NewRouter wires the middleware chain and routes. Forwarding headers are
// only honoured when the peer is one of trustedProxies; with none configured
// the client IP is the connection address.
func NewRouter(allowedOrigins, trustedProxies []string, h Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.RemoteIPHeaders = append(router.RemoteIPHeaders, "Client-IP")

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(m))
	router.Use(middleware.CORS(allowedOrigins))

	// health check
	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)
	router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	for _, base := range TrackingPaths {
		tracking := router.Group(base)
		{
			tracking.POST("", h.Tracking.Track)
			tracking.GET("", h.Tracking.Stats)
			tracking.GET("/rules", h.Tracking.Rules)
		}
	}

	return router, nil
}
