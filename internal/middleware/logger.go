package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID injects an X-Request-ID header into the request and response.
// A caller-supplied ID is kept so callbacks retried by the extraction
// service stay correlatable across deliveries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each HTTP request. Health endpoints are skipped; the liveness
// and readiness checks would otherwise dominate the log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		requestID, _ := c.Get("request_id")
		if len(c.Errors) > 0 {
			log.Printf("[%s] %s %s %d %s errors=%s",
				requestID, c.Request.Method, path, c.Writer.Status(), latency, c.Errors.String())
			return
		}
		log.Printf("[%s] %s %s %d %s",
			requestID, c.Request.Method, path, c.Writer.Status(), latency)
	}
}

// Recovery recovers from panics, logs the panic under the request ID, and
// answers with the standard error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] panic recovered: %v", requestID, recovered)
		c.AbortWithStatusJSON(500, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
