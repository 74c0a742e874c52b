package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/flowgate/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerHealthRoutes(r *gin.Engine, ping func(ctx context.Context) error) {
	r.GET("/health", getHealth)
	r.GET("/health/ready", getReadiness(ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// getHealth godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// getReadiness godoc
// @Summary Report store readiness.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health/ready [get]
func getReadiness(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				middleware.GetLoggerFromContext(c).Error("Readiness check failed", slog.String("error", err.Error()))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "UNAVAILABLE"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	}
}
