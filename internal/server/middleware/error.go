package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/zone-analytics-proxy/internal/analytics"
	"github.com/nulzo/zone-analytics-proxy/internal/httpclient"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler attached with c.Error. Every failure
// maps to 500 with an {"error": message} body.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID := zap.String("request_id", c.GetString(RequestIDKey))

		var validationErr *analytics.ValidationError
		var upstreamErr *analytics.UpstreamError
		switch {
		case errors.As(err, &validationErr):
			logger.Warn("Rejected analytics request", requestID,
				zap.Strings("missing", validationErr.Fields),
				zap.Strings("reasons", validationErr.Reasons),
			)
		case errors.As(err, &upstreamErr):
			fields := []zap.Field{
				requestID,
				zap.Int("upstream_status", upstreamErr.StatusCode),
				zap.Error(upstreamErr.Err),
			}
			var statusErr *httpclient.UpstreamError
			if errors.As(err, &statusErr) {
				fields = append(fields, zap.ByteString("upstream_body", statusErr.Body))
			}
			logger.Error("Analytics provider call failed", fields...)
		default:
			logger.Error("Unhandled error", requestID, zap.Error(err))
		}

		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		c.Abort()
	}
}
