package server

import (
	"errors"
	"net/http"

	"github.com/go-training/miurev/pkg/auth"
	"github.com/go-training/miurev/pkg/catalog"
	"github.com/go-training/miurev/pkg/core"

	"github.com/gin-gonic/gin"
)

// BusyMessage is sent to clients while the upstream is rate limiting us.
const BusyMessage = "Server is busy. Please wait for several minutes"

// errInternal is the message used when an error carries nothing a client should see.
const errInternal = "There is something problem with our system."

// writeError maps a catalog error onto an HTTP response:
// busy or upstream 429 become 409, other upstream statuses pass through,
// token failures are 502 and everything else 500.
func writeError(c *gin.Context, err error) {
	logger := core.LoggerFromCtx(c.Request.Context())

	var busyErr *catalog.BusyError
	if errors.As(err, &busyErr) {
		c.Header("Retry-After", retryAfterSeconds(busyErr.RetryAfter))
		c.JSON(http.StatusConflict, gin.H{"message": BusyMessage})
		return
	}

	var upstreamErr *core.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.StatusCode == http.StatusTooManyRequests {
			if upstreamErr.Response != nil {
				if ra := upstreamErr.Response.Header.Get("Retry-After"); ra != "" {
					c.Header("Retry-After", ra)
				}
			}
			c.JSON(http.StatusConflict, gin.H{"message": BusyMessage})
			return
		}
		msg := upstreamErr.Message()
		if msg == "" {
			msg = http.StatusText(upstreamErr.StatusCode)
		}
		c.JSON(upstreamErr.StatusCode, gin.H{"message": msg})
		return
	}

	if errors.Is(err, auth.ErrAuthorization) {
		logger.Error("Catalog authorization failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": auth.ErrAuthorization.Error()})
		return
	}

	logger.Error("Catalog request failed", "error", err)
	msg := err.Error()
	if msg == "" {
		msg = errInternal
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}
