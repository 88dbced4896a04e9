package handlers

import (
	"context"
	"net/http"
	"time"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const (
	StatusOk           = "ok"
	StatusDown         = "down"
	ServiceName        = "todo-api"
	healthStoreTimeout = 2 * time.Second
)

type HealthServices struct {
	Store string `json:"store"`
}

type HealthAdvanced struct {
	AppName           string         `json:"app_name"`
	AppVersion        string         `json:"app_version"`
	CurrentSystemTime string         `json:"current_system_time"`
	Language          string         `json:"language"`
	Status            HealthServices `json:"status"`
}

type HealthHandler struct {
	store      ports.HealthChecker
	appName    string
	appVersion string
}

func NewHealthHandler(store ports.HealthChecker, appName, appVersion string) *HealthHandler {
	return &HealthHandler{store: store, appName: appName, appVersion: appVersion}
}

// CheckHealth is a liveness probe and never touches the store.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Health{OK: true, Service: ServiceName})
}

func (h *HealthHandler) CheckHealthReport(c *gin.Context) {
	storeStatus := StatusDown
	if h.checkStore(c.Request.Context()) {
		storeStatus = StatusOk
	}

	c.JSON(http.StatusOK, HealthAdvanced{
		AppName:           h.appName,
		AppVersion:        h.appVersion,
		CurrentSystemTime: time.Now().Format("2006-01-02 15:04:05"),
		Language:          middleware.GetLang(c),
		Status: HealthServices{
			Store: storeStatus,
		},
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, healthStoreTimeout)
	defer cancel()
	return h.store.Ping(timeoutCtx) == nil
}
