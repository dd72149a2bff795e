package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gowander/waypost/internal/observability/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthRequired gates the admin surface behind a static bearer token.
// The configured value is a bcrypt hash, so the plaintext token never
// lives in the environment. An empty hash disables admin entirely.
func (s *Server) AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := s.cfg.Admin.TokenHash
		if hash == "" {
			AbortWithError(c, ErrForbidden)
			return
		}

		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}

// RateLimit applies a per-client-IP token bucket to the route. Requests
// pass through untouched when no limiter is configured.
func (s *Server) RateLimit(scope string, rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())

		res, err := s.limiter.Allow(ctx, key, rate, burst)
		if err != nil {
			// Redis trouble must not take bookings down. Fail open.
			logger.FromContext(ctx).Warn("rate limit check failed",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !res.Allowed {
			endpoint := normalizeEndpoint(c)
			logger.FromContext(ctx).Warn("rate limit exceeded",
				zap.String("scope", scope),
				zap.String("endpoint", endpoint),
			)
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, scope)
			}
			seconds := int(res.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func normalizeEndpoint(c *gin.Context) string {
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
