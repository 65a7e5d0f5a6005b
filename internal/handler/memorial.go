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

type MemorialHandler struct {
	memorialService *service.MemorialService
}

func NewMemorialHandler(memorialService *service.MemorialService) *MemorialHandler {
	return &MemorialHandler{
		memorialService: memorialService,
	}
}

type memorialRequest struct {
	Name     string `json:"name"`
	Story    string `json:"story"`
	BornOn   string `json:"born_on"`
	PassedOn string `json:"passed_on"`
}

type memorialResponse struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	BornOn    *time.Time `json:"born_on,omitempty"`
	PassedOn  *time.Time `json:"passed_on,omitempty"`
	Story     string     `json:"story"`
	StoryHTML string     `json:"story_html,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

func toMemorialResponse(m *model.Memorial, storyHTML string) memorialResponse {
	return memorialResponse{
		ID:        m.ID,
		Slug:      m.Slug,
		Name:      m.Name,
		BornOn:    m.BornOn,
		PassedOn:  m.PassedOn,
		Story:     m.Story,
		StoryHTML: storyHTML,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *MemorialHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req memorialRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bornOn, ok := parseDate(req.BornOn)
	if !ok {
		respondError(w, http.StatusBadRequest, "born_on must be YYYY-MM-DD")
		return
	}
	passedOn, ok := parseDate(req.PassedOn)
	if !ok {
		respondError(w, http.StatusBadRequest, "passed_on must be YYYY-MM-DD")
		return
	}

	memorial, err := h.memorialService.Create(userID, req.Name, req.Story, bornOn, passedOn)
	if err != nil {
		if respondQuotaDenied(w, err) {
			return
		}
		if err == service.ErrMemorialNameRequired {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create memorial", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to create memorial")
		return
	}

	respondJSON(w, http.StatusCreated, toMemorialResponse(memorial, ""))
}

func (h *MemorialHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	memorials, err := h.memorialService.Memorials(userID)
	if err != nil {
		slog.Error("failed to list memorials", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "failed to load memorials")
		return
	}

	responses := make([]memorialResponse, 0, len(memorials))
	for _, m := range memorials {
		responses = append(responses, toMemorialResponse(m, ""))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *MemorialHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	memorial, err := h.memorialService.ByID(userID, memorialID)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to get memorial", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to load memorial")
		return
	}

	storyHTML, err := h.memorialService.StoryHTML(memorial)
	if err != nil {
		slog.Error("failed to render story", "error", err, "memorial_id", memorialID)
		storyHTML = ""
	}

	respondJSON(w, http.StatusOK, toMemorialResponse(memorial, storyHTML))
}

func (h *MemorialHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	var req memorialRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bornOn, ok := parseDate(req.BornOn)
	if !ok {
		respondError(w, http.StatusBadRequest, "born_on must be YYYY-MM-DD")
		return
	}
	passedOn, ok := parseDate(req.PassedOn)
	if !ok {
		respondError(w, http.StatusBadRequest, "passed_on must be YYYY-MM-DD")
		return
	}

	err = h.memorialService.Update(userID, memorialID, req.Name, req.Story, bornOn, passedOn)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		if err == service.ErrMemorialNameRequired {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to update memorial", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to update memorial")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemorialHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	err := h.memorialService.Publish(userID, memorialID)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to publish memorial", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to publish memorial")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemorialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	err := h.memorialService.Delete(userID, memorialID)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to delete memorial", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to delete memorial")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
