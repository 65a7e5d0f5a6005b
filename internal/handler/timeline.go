package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/ctxkeys"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
)

type TimelineHandler struct {
	timelineService *service.TimelineService
}

func NewTimelineHandler(timelineService *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{
		timelineService: timelineService,
	}
}

type timelineEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HappenedOn  string `json:"happened_on"`
}

type timelineEventResponse struct {
	ID          string     `json:"id"`
	MemorialID  string     `json:"memorial_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HappenedOn  *time.Time `json:"happened_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTimelineEventResponse(event *model.TimelineEvent) timelineEventResponse {
	return timelineEventResponse{
		ID:          event.ID,
		MemorialID:  event.MemorialID,
		Title:       event.Title,
		Description: event.Description,
		HappenedOn:  event.HappenedOn,
		CreatedAt:   event.CreatedAt,
	}
}

func (h *TimelineHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	var req timelineEventRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	happenedOn, ok := parseDate(req.HappenedOn)
	if !ok {
		respondError(w, http.StatusBadRequest, "happened_on must be YYYY-MM-DD")
		return
	}

	event, err := h.timelineService.Add(userID, memorialID, req.Title, req.Description, happenedOn)
	if err != nil {
		if respondQuotaDenied(w, err) {
			return
		}
		if err == service.ErrTimelineTitleRequired {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to add timeline event", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to add timeline event")
		return
	}

	respondJSON(w, http.StatusCreated, toTimelineEventResponse(event))
}

func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	events, err := h.timelineService.Events(userID, memorialID)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to list timeline events", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to load timeline events")
		return
	}

	responses := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, toTimelineEventResponse(event))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	eventID := r.PathValue("id")

	err := h.timelineService.Delete(userID, eventID)
	if err != nil {
		if err == repository.ErrTimelineEventNotFound {
			respondError(w, http.StatusNotFound, "timeline event not found")
			return
		}
		slog.Error("failed to delete timeline event", "error", err, "user_id", userID, "event_id", eventID)
		respondError(w, http.StatusInternalServerError, "failed to delete timeline event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
