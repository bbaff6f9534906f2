package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/bootstrap"
	"assignment-helper/internal/platform/postgres"
	"assignment-helper/internal/platform/rabbitmq"
	"assignment-helper/internal/platform/redis"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Academic Assignment Helper API"})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Check pings every configured dependency; disabled ones are not reported.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{"postgres": toStatus(postgres.Ping(ctx, h.app.DB))}
	allOK := deps["postgres"].(dependencyStatus).OK

	if h.app.Redis != nil {
		s := toStatus(redis.Ping(ctx, h.app.Redis))
		deps["redis"] = s
		allOK = allOK && s.OK
	}
	if h.app.MQConn != nil {
		s := toStatus(rabbitmq.Ping(h.app.MQConn))
		deps["rabbitmq"] = s
		allOK = allOK && s.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": deps,
	})
}

func toStatus(err error) dependencyStatus {
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
