package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"autoremedy/pkg/log"
)

// RequestID reuses an inbound X-Request-ID or generates one, echoes it in the
// response and attaches it to the request context for logging.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = m.newID()
		}
		c.Header(HeaderRequestID, id)

		ctx := log.WithFields(c.Request.Context(), "request_id", id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger writes one line per request.
func (m Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.l.Infof(c.Request.Context(), "%s %s %d %s", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
