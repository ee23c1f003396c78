package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorLogger logs every request, the errors attached to it, and recovers
// from panics with a JSON 500.
func ErrorLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Error("panic recovered",
					append(requestFields(c, start), zap.Error(err), zap.ByteString("stack", debug.Stack()))...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			fields := requestFields(c, start)
			switch {
			case len(c.Errors) > 0:
				for _, e := range c.Errors {
					log.Warn("request error", append(fields, zap.Error(e.Err))...)
				}
			case c.Writer.Status() >= http.StatusInternalServerError:
				log.Error("request failed", fields...)
			default:
				log.Debug("request", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) []zap.Field {
	return []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_id", c.GetString("user_id")),
		zap.String("request_id", requestID(c)),
		zap.Duration("latency", time.Since(start)),
	}
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
