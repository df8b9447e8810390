package middleware

import (
	"net/http"
	"strings"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Recovery turns a panic into a 500 {"error": ...} response. The logged request dump
// is reduced to its request line with credentials redacted.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(redactingLogger{logger}, true, func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	})
}

type redactingLogger struct {
	*zap.Logger
}

func (l redactingLogger) Error(msg string, fields ...zap.Field) {
	for i, f := range fields {
		if f.Key == "request" && f.Type == zapcore.StringType {
			fields[i] = zap.String("request", redactRequestLine(f.String))
		}
	}
	l.Logger.Error(msg, fields...)
}

// redactRequestLine keeps "METHOD /path?query PROTO" from a request dump and drops
// the headers.
func redactRequestLine(dump string) string {
	line, _, _ := strings.Cut(dump, "\n")
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return ""
	}
	if path, query, ok := strings.Cut(parts[1], "?"); ok {
		parts[1] = path + "?" + redactQuery(query)
	}
	return strings.Join(parts, " ")
}
