package service

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/VSD-Devs/sandalwood-memories/internal/storage"
	"github.com/google/uuid"
)

// UploadRequest is one file the caller wants to attach to a memorial. The
// quota engine only sees the derived UploadItem values, never the reader.
type UploadRequest struct {
	Kind         string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Content      io.Reader
}

type MediaService struct {
	mediaRepo    repository.MediaRepository
	memorialRepo repository.MemorialRepository
	quotaService *QuotaService
	storage      storage.Storage
}

func NewMediaService(
	mediaRepo repository.MediaRepository,
	memorialRepo repository.MemorialRepository,
	quotaService *QuotaService,
	storage storage.Storage,
) *MediaService {
	return &MediaService{
		mediaRepo:    mediaRepo,
		memorialRepo: memorialRepo,
		quotaService: quotaService,
		storage:      storage,
	}
}

// Upload stores a batch of files for a memorial after a single quota check
// over the whole batch. File validation (type, content sniffing) is the
// caller's job; this service enforces plan limits and persists.
func (s *MediaService) Upload(userID, memorialID string, requests []UploadRequest) ([]*model.MediaItem, error) {
	// Verify ownership
	_, err := s.memorialRepo.ByID(userID, memorialID)
	if err != nil {
		return nil, err
	}

	items := make([]UploadItem, 0, len(requests))
	for _, req := range requests {
		items = append(items, UploadItem{Kind: req.Kind, SizeBytes: req.SizeBytes})
	}

	decision, err := s.quotaService.CheckUsageLimits(userID, ActionUploadMedia, ActionPayload{
		MemorialID: memorialID,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &QuotaExceededError{Decision: decision}
	}

	stored := make([]*model.MediaItem, 0, len(requests))
	for _, req := range requests {
		item, err := s.store(userID, memorialID, req)
		if err != nil {
			// Earlier files in the batch stay; counters self-correct on the
			// next recompute either way.
			s.quotaService.refreshUsage(userID, memorialID)
			return stored, err
		}
		stored = append(stored, item)
	}

	// Post-mutation bookkeeping, best-effort: a failure here never rolls
	// back or fails the upload that already succeeded.
	s.quotaService.refreshUsage(userID, memorialID)

	return stored, nil
}

func (s *MediaService) store(userID, memorialID string, req UploadRequest) (*model.MediaItem, error) {
	ext := filepath.Ext(req.OriginalName)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	storagePath := filepath.Join("memorials", memorialID, req.Kind+"s", filename)

	err := s.storage.Save(storagePath, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	item := &model.MediaItem{
		ID:           uuid.New().String(),
		UserID:       userID,
		MemorialID:   memorialID,
		Kind:         req.Kind,
		Filename:     filename,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		SizeBytes:    req.SizeBytes,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.mediaRepo.Create(item)
	if err != nil {
		// If DB insert fails, try to clean up the stored object
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	return item, nil
}

func (s *MediaService) ByMemorial(userID, memorialID string) ([]*model.MediaItem, error) {
	// Verify ownership
	_, err := s.memorialRepo.ByID(userID, memorialID)
	if err != nil {
		return nil, err
	}

	return s.mediaRepo.ByMemorial(memorialID)
}

func (s *MediaService) Delete(userID, mediaID string) error {
	item, err := s.mediaRepo.ByID(mediaID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return repository.ErrMediaNotFound
	}

	// Delete from storage (best effort)
	delErr := s.storage.Delete(item.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", item.StoragePath)
	}

	err = s.mediaRepo.Delete(mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	s.quotaService.refreshUsage(userID, item.MemorialID)

	return nil
}

// URL returns a presigned or direct URL for serving a media item.
func (s *MediaService) URL(item *model.MediaItem) string {
	if item == nil {
		return ""
	}

	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		url, err := s3Storage.PresignedURL(item.StoragePath, s3Storage.GetPresignExpiryPrivate())
		if err != nil {
			return s3Storage.PublicURL(item.StoragePath)
		}
		return url
	}

	return s.storage.URL(item.StoragePath)
}
