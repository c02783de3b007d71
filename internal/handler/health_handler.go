package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plaxtilineas/catalog_api/internal/service"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

var startTime = time.Now()

// HealthHandler serves the diagnostic endpoints. Every call checks the
// dependencies afresh.
type HealthHandler struct {
	health *service.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(health *service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// GetHealth always answers 200 and reports each dependency.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	checks, ok := h.health.CheckAll(c.Request.Context())
	status := "healthy"
	if !ok {
		status = "degraded"
	}
	utils.Success(c, http.StatusOK, "Service is running", gin.H{
		"status": status,
		"uptime": int(time.Since(startTime).Seconds()),
		"checks": checks,
	})
}

// TestMedia reports the media store check.
func (h *HealthHandler) TestMedia(c *gin.Context) {
	respondCheck(c, h.health.CheckMedia(c.Request.Context()))
}

// TestDatabase reports the database check.
func (h *HealthHandler) TestDatabase(c *gin.Context) {
	respondCheck(c, h.health.CheckDatabase(c.Request.Context()))
}

// TestAll answers 200 only when every check passes.
func (h *HealthHandler) TestAll(c *gin.Context) {
	checks, ok := h.health.CheckAll(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, utils.Response{
			Success: false,
			Code:    http.StatusInternalServerError,
			Message: "One or more checks failed",
			Data:    checks,
			Error:   &utils.ErrorInfo{Code: "DEPENDENCY_ERROR", Message: "One or more checks failed"},
			Meta:    utils.NewMeta(c),
		})
		return
	}
	utils.Success(c, http.StatusOK, "All checks passed", checks)
}

func respondCheck(c *gin.Context, res service.CheckResult) {
	if !res.OK {
		c.JSON(http.StatusInternalServerError, utils.Response{
			Success: false,
			Code:    http.StatusInternalServerError,
			Message: res.Name + " check failed",
			Data:    res,
			Error:   &utils.ErrorInfo{Code: "DEPENDENCY_ERROR", Message: res.Name + " check failed"},
			Meta:    utils.NewMeta(c),
		})
		return
	}
	utils.Success(c, http.StatusOK, res.Name+" check passed", res)
}
