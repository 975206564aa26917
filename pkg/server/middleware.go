package server

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/ratelimit"

	sloggin "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
)

// corsMiddleware answers preflight requests and allows any origin.
// Extra allowed headers are merged with the defaults, keeping their casing.
func corsMiddleware(allowedHeaders ...string) gin.HandlerFunc {
	defaultHeaders := []string{"Mcp-Protocol-Version", "Authorization", "Content-Type", core.RequestIDHeader}
	headersList := append([]string(nil), defaultHeaders...)
	for _, h := range allowedHeaders {
		hNorm := strings.TrimSpace(h)
		if hNorm != "" && hNorm != "*" && !containsCI(headersList, hNorm) {
			headersList = append(headersList, hNorm)
		}
	}

	allowedMethods := []string{"GET", "POST", "DELETE", "OPTIONS"}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(headersList, ", "))
		c.Header("Access-Control-Expose-Headers", core.RequestIDHeader+", Retry-After")
		c.Header("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestIDMiddleware propagates an incoming X-Request-ID or generates one,
// and stores it in the request context for core.LoggerFromCtx.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := core.WithRequestID(c.Request.Context(), c.GetHeader(core.RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(core.RequestIDHeader, core.RequestIDFromCtx(ctx))
		c.Next()
	}
}

// accessLogMiddleware writes one record per request through the
// request-scoped logger: 4xx at Warn, 5xx at Error.
func accessLogMiddleware() gin.HandlerFunc {
	return sloggin.SetLogger(
		sloggin.WithLogger(func(c *gin.Context, _ *slog.Logger) *slog.Logger {
			return core.LoggerFromCtx(c.Request.Context())
		}),
		sloggin.WithClientErrorLevel(slog.LevelWarn),
		sloggin.WithServerErrorLevel(slog.LevelError),
	)
}

// rateLimitMiddleware rejects clients that exceed their token bucket.
func rateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", retryAfterSeconds(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}

// cacheControl sets the client-side caching window for catalog routes.
func cacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := "max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// retryAfterSeconds rounds d up to whole seconds, with a minimum of one.
func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// containsCI checks if slice contains item (case-insensitive).
func containsCI(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
