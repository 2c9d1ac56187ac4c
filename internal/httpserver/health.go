package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autoremedy/pkg/response"
)

const (
	HealthVersion = "1.0.0"
	ServiceName   = "autoremedy"
)

// healthCheck handles health check requests
// @Summary Health Check
// @Description Check if the API is healthy
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "API is healthy"
// @Router /health [get]
func (srv HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// readyCheck reports ready once the working copy the pipeline edits is reachable.
// @Summary Readiness Check
// @Description Ready when the configured repository working copy exists
// @Tags Health
// @Produce json
// @Success 200 {object} response.Resp "API is ready"
// @Failure 503 {object} response.Rejection "Repository unavailable"
// @Router /ready [get]
func (srv HTTPServer) readyCheck(c *gin.Context) {
	if srv.readyCheck != nil {
		if err := srv.readyCheck(); err != nil {
			srv.l.Warnf(c.Request.Context(), "httpserver.readyCheck: not ready: %v", err)
			response.Reject(c, http.StatusServiceUnavailable, "repository unavailable")
			return
		}
	}

	response.OK(c, gin.H{
		"status":  "ready",
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// liveCheck handles liveness check requests
// @Summary Liveness Check
// @Description Check if the API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} response.Resp "API is alive"
// @Router /live [get]
func (srv HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"version": HealthVersion,
		"service": ServiceName,
	})
}
