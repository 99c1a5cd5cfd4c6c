package handler

import (
	"strings"

	"study-byte/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// BackendStatus reports the registry state of every backend.
type BackendStatus interface {
	Status() map[string]string
}

// HealthHandler reports "ok" when at least one model backend is
// available and "degraded" when only the heuristic tier can run.
type HealthHandler struct {
	backends       BackendStatus
	storageEnabled bool
}

func NewHealthHandler(backends BackendStatus, storageEnabled bool) *HealthHandler {
	return &HealthHandler{backends: backends, storageEnabled: storageEnabled}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	backends := h.backends.Status()

	status := "degraded"
	for _, s := range backends {
		if !strings.HasPrefix(s, "unavailable") {
			status = "ok"
			break
		}
	}
	storage := "disabled"
	if h.storageEnabled {
		storage = "enabled"
	}
	return c.JSON(dto.HealthResponse{Status: status, Backends: backends, Storage: storage})
}
