package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/VSD-Devs/sandalwood-memories/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondQuotaDenied renders a policy denial with the engine's precomputed
// message and upgrade hint. Returns false when err is not a quota denial.
func respondQuotaDenied(w http.ResponseWriter, err error) bool {
	var quotaErr *service.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		return false
	}

	respondJSON(w, http.StatusForbidden, map[string]any{
		"allowed":          false,
		"message":          quotaErr.Decision.Message,
		"upgrade_required": quotaErr.Decision.UpgradeRequired,
	})
	return true
}
