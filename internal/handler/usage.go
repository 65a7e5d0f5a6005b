package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/VSD-Devs/sandalwood-memories/internal/ctxkeys"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
)

type UsageHandler struct {
	quotaService        *service.QuotaService
	subscriptionService *service.SubscriptionService
}

func NewUsageHandler(quotaService *service.QuotaService, subscriptionService *service.SubscriptionService) *UsageHandler {
	return &UsageHandler{
		quotaService:        quotaService,
		subscriptionService: subscriptionService,
	}
}

type usageLimitsResponse struct {
	MaxMemorials         int `json:"max_memorials"`
	MaxPhotosPerMemorial int `json:"max_photos_per_memorial"`
	MaxVideosPerMemorial int `json:"max_videos_per_memorial"`
	MaxVideoSizeMB       int `json:"max_video_size_mb"`
	MaxTotalStorageMB    int `json:"max_total_storage_mb"`
	MaxTimelineEvents    int `json:"max_timeline_events"`
}

type memorialUsageResponse struct {
	MemorialID     string  `json:"memorial_id"`
	MediaCount     int     `json:"media_count"`
	PhotoCount     int     `json:"photo_count"`
	VideoCount     int     `json:"video_count"`
	MediaSizeMB    float64 `json:"media_size_mb"`
	TimelineEvents int     `json:"timeline_events"`
}

type usageResponse struct {
	Plan           string                  `json:"plan"`
	Limits         usageLimitsResponse     `json:"limits"`
	MemorialCount  int                     `json:"memorial_count"`
	TotalStorageMB float64                 `json:"total_storage_mb"`
	Memorials      []memorialUsageResponse `json:"memorials"`
}

// Get returns the caller's plan, plan limits, and a freshly aggregated usage
// snapshot. Limits use -1 for unlimited.
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	plan := h.subscriptionService.Plan(userID)
	limits := model.LimitsFor(plan)

	usage, err := h.quotaService.UserUsage(userID)
	if err != nil {
		slog.Error("failed to aggregate usage", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to load usage")
		return
	}

	resp := usageResponse{
		Plan: string(plan),
		Limits: usageLimitsResponse{
			MaxMemorials:         limits.MaxMemorials,
			MaxPhotosPerMemorial: limits.MaxPhotosPerMemorial,
			MaxVideosPerMemorial: limits.MaxVideosPerMemorial,
			MaxVideoSizeMB:       limits.MaxVideoSizeMB,
			MaxTotalStorageMB:    limits.MaxTotalStorageMB,
			MaxTimelineEvents:    limits.MaxTimelineEvents,
		},
		MemorialCount:  usage.MemorialCount,
		TotalStorageMB: usage.TotalStorageMB,
		Memorials:      make([]memorialUsageResponse, 0, len(usage.MemorialUsage)),
	}
	for _, row := range usage.MemorialUsage {
		resp.Memorials = append(resp.Memorials, memorialUsageResponse{
			MemorialID:     row.MemorialID,
			MediaCount:     row.MediaCount,
			PhotoCount:     row.PhotoCount,
			VideoCount:     row.VideoCount,
			MediaSizeMB:    row.MediaSizeMB,
			TimelineEvents: row.TimelineEvents,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

type usageCheckRequest struct {
	Action     string `json:"action"`
	MemorialID string `json:"memorial_id"`
	Items      []struct {
		Kind      string `json:"kind"`
		SizeBytes int64  `json:"size_bytes"`
	} `json:"items"`
}

type usageCheckResponse struct {
	Allowed         bool   `json:"allowed"`
	Message         string `json:"message,omitempty"`
	UpgradeRequired bool   `json:"upgrade_required"`
}

// Check is a preflight quota check, so clients can disable an upload button
// or show an upgrade prompt before sending bytes. The mutating endpoints run
// the same check again at commit time.
func (h *UsageHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req usageCheckRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := service.ActionPayload{MemorialID: req.MemorialID}
	for _, item := range req.Items {
		payload.Items = append(payload.Items, service.UploadItem{
			Kind:      item.Kind,
			SizeBytes: item.SizeBytes,
		})
	}

	decision, err := h.quotaService.CheckUsageLimits(userID, service.Action(req.Action), payload)
	if err != nil {
		slog.Error("failed to check usage limits", "error", err, "user_id", userID, "action", req.Action)
		respondError(w, http.StatusInternalServerError, "failed to check usage limits")
		return
	}

	respondJSON(w, http.StatusOK, usageCheckResponse{
		Allowed:         decision.Allowed,
		Message:         decision.Message,
		UpgradeRequired: decision.UpgradeRequired,
	})
}

// Recompute rebuilds the counter row for one memorial from the authoritative
// tables. Useful after support interventions or suspected drift.
func (h *UsageHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	err := h.quotaService.RecordMemorialUsage(userID, memorialID)
	if err != nil {
		slog.Error("failed to recompute memorial usage", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to recompute usage")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
