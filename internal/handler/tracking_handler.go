package handler

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/PartyProtect/revive-your-hair-website/internal/aggregate"
	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/PartyProtect/revive-your-hair-website/internal/metrics"
	"github.com/PartyProtect/revive-your-hair-website/internal/service"
	"github.com/PartyProtect/revive-your-hair-website/pkg/detector"
	"github.com/PartyProtect/revive-your-hair-website/pkg/ratelimit"
	"github.com/PartyProtect/revive-your-hair-website/pkg/response"
	"github.com/PartyProtect/revive-your-hair-website/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	actionStats  = "stats"
	apiKeyHeader = "X-API-Key"
	apiKeyQuery  = "apiKey"
)

type TrackingService interface {
	Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error)
	Stats(ctx context.Context) (*domain.StatsReport, error)
}

type Limiter interface {
	Check(key string) ratelimit.Decision
}

// Limiters holds two independent instances; Ingest and Stats never share state.
type Limiters struct {
	Ingest Limiter
	Stats  Limiter
}

type TrackingHandler struct {
	service      TrackingService
	limiters     Limiters
	apiKeyDigest [sha256.Size]byte
	hasAPIKey    bool
	metrics      *metrics.Metrics
}

func NewTrackingHandler(service TrackingService, limiters Limiters, apiKey string, m *metrics.Metrics) *TrackingHandler {
	return &TrackingHandler{
		service:      service,
		limiters:     limiters,
		apiKeyDigest: sha256.Sum256([]byte(apiKey)),
		hasAPIKey:    apiKey != "",
		metrics:      m,
	}
}

func (h *TrackingHandler) Track(c *gin.Context) {
	var req domain.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationErrors(c, []response.ValidationError{{Field: "body", Message: "body must be a valid JSON object"}})
		return
	}

	if errs := validator.Validate(&req); len(errs) > 0 {
		h.metrics.TrackingOutcome(req.Type, "invalid")
		response.ValidationErrors(c, errs)
		return
	}

	clientIP := c.ClientIP()
	if d := h.limiters.Ingest.Check(clientIP); !d.Allowed {
		h.rateLimited(c, "ingest", d)
		return
	}

	res, err := h.service.Track(c.Request.Context(), domain.TrackInput{
		Request:   &req,
		ClientIP:  clientIP,
		UserAgent: c.Request.UserAgent(),
	})
	switch {
	case errors.Is(err, service.ErrStoreUnavailable):
		response.ServiceUnavailable(c, domain.TrackResult{Tracked: false, Reason: domain.ReasonStorageUnavailable})
		return
	case errors.Is(err, aggregate.ErrInvalidEvent):
		response.BadRequest(c, "Invalid event", err.Error())
		return
	case err != nil:
		c.Error(err)
		response.InternalServerError(c, "")
		return
	}

	response.OK(c, res)
}

func (h *TrackingHandler) Stats(c *gin.Context) {
	clientIP := c.ClientIP()
	if d := h.limiters.Stats.Check(clientIP); !d.Allowed {
		h.rateLimited(c, "stats", d)
		return
	}

	if action := c.Query("action"); action != actionStats {
		response.BadRequest(c, "Invalid action", "Supported actions: stats")
		return
	}

	if !h.authorized(c) {
		logger.FromContext(c.Request.Context()).Warn("Rejected stats request", "ip", clientIP)
		response.Unauthorized(c)
		return
	}

	report, err := h.service.Stats(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "Storage unavailable", "")
			return
		}
		c.Error(err)
		response.InternalServerError(c, "")
		return
	}

	response.OK(c, report)
}

// Rules serves the classifier lists so client-side pre-filters stay in sync.
func (h *TrackingHandler) Rules(c *gin.Context) {
	response.OK(c, detector.ClassifierRules())
}

// authorized compares digests so the comparison time does not depend on the
// length of either key.
func (h *TrackingHandler) authorized(c *gin.Context) bool {
	if !h.hasAPIKey {
		return false
	}

	key := c.GetHeader(apiKeyHeader)
	if key == "" {
		key = c.Query(apiKeyQuery)
	}
	if key == "" {
		return false
	}

	digest := sha256.Sum256([]byte(key))
	return subtle.ConstantTimeCompare(digest[:], h.apiKeyDigest[:]) == 1
}

func (h *TrackingHandler) rateLimited(c *gin.Context, endpoint string, d ratelimit.Decision) {
	h.metrics.RateLimited(endpoint)
	response.TooManyRequests(c, fmt.Sprintf("Maximum %d requests per window", d.Limit), d.RetryAfterSeconds)
}
