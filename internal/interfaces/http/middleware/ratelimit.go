package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/interfaces/http/response"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/metrics"
	"licensekit.backend/pkg/redis"
)

// KeyFunc extracts the rate-limit identifier from the request. An empty
// identifier skips limiting for that request.
type KeyFunc func(c *gin.Context) string

// RateLimitMiddleware applies a sliding-window limit to one call site. Each
// site supplies its own scope, threshold and window over the shared limiter.
// Limiter-store failures fail open: dropping a legitimate request over a
// cache hiccup is worse than letting one through.
func RateLimitMiddleware(limiter *redis.Limiter, scope string, limit int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := keyFn(c)
		if identifier == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+identifier, limit, window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			response.AbortError(c, domainerrors.RateLimited("too many requests, slow down"))
			return
		}

		c.Next()
	}
}

// LicenseKeyExtractor keys the limit by the licenseKey field of the JSON
// body. ShouldBindBodyWith buffers the body so handlers can bind it again.
func LicenseKeyExtractor(c *gin.Context) string {
	var body struct {
		LicenseKey string `json:"licenseKey"`
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	return body.LicenseKey
}

// ClientIPExtractor keys the limit by the caller's IP
func ClientIPExtractor(c *gin.Context) string {
	return c.ClientIP()
}
