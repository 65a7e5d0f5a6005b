package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/ctxkeys"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
	"github.com/VSD-Devs/sandalwood-memories/internal/validation"
)

// maxUploadMemory caps how much of a multipart body is held in memory;
// anything larger spills to temp files.
const maxUploadMemory = 32 << 20

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

type mediaResponse struct {
	ID           string    `json:"id"`
	MemorialID   string    `json:"memorial_id"`
	Kind         string    `json:"kind"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *MediaHandler) toResponse(item *model.MediaItem) mediaResponse {
	return mediaResponse{
		ID:           item.ID,
		MemorialID:   item.MemorialID,
		Kind:         item.Kind,
		OriginalName: item.OriginalName,
		MimeType:     item.MimeType,
		SizeBytes:    item.SizeBytes,
		URL:          h.mediaService.URL(item),
		CreatedAt:    item.CreatedAt,
	}
}

// Upload accepts one or more files under the "files" form field, validates
// each by content sniffing, then hands the whole batch to the media service
// so plan limits are checked once over all of them.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	requests := make([]service.UploadRequest, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, header := range headers {
		kind, err := validation.KindFor(header)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		file, err := header.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		files = append(files, file)

		requests = append(requests, service.UploadRequest{
			Kind:         kind,
			OriginalName: header.Filename,
			MimeType:     header.Header.Get("Content-Type"),
			SizeBytes:    header.Size,
			Content:      file,
		})
	}

	stored, err := h.mediaService.Upload(userID, memorialID, requests)
	if err != nil {
		if respondQuotaDenied(w, err) {
			return
		}
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to upload media", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to upload media")
		return
	}

	responses := make([]mediaResponse, 0, len(stored))
	for _, item := range stored {
		responses = append(responses, h.toResponse(item))
	}

	respondJSON(w, http.StatusCreated, responses)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	memorialID := r.PathValue("id")

	items, err := h.mediaService.ByMemorial(userID, memorialID)
	if err != nil {
		if err == repository.ErrMemorialNotFound {
			respondError(w, http.StatusNotFound, "memorial not found")
			return
		}
		slog.Error("failed to list media", "error", err, "user_id", userID, "memorial_id", memorialID)
		respondError(w, http.StatusInternalServerError, "failed to load media")
		return
	}

	responses := make([]mediaResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, h.toResponse(item))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	mediaID := r.PathValue("id")

	err := h.mediaService.Delete(userID, mediaID)
	if err != nil {
		if err == repository.ErrMediaNotFound {
			respondError(w, http.StatusNotFound, "media not found")
			return
		}
		slog.Error("failed to delete media", "error", err, "user_id", userID, "media_id", mediaID)
		respondError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
