package handler

import (
	"net/http"

	"github.com/VSD-Devs/sandalwood-memories/internal/config"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health reports liveness plus which optional backends are configured, so a
// fail-open deployment is visible from the outside.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"app":       h.cfg.AppName,
		"env":       h.cfg.AppEnv,
		"datastore": h.cfg.HasDatastore(),
		"storage":   h.cfg.HasStorage(),
	})
}
