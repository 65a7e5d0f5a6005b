package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrTimelineTitleRequired = errors.New("timeline event title is required")
)

type TimelineService struct {
	repo         repository.TimelineRepository
	memorialRepo repository.MemorialRepository
	quotaService *QuotaService
}

func NewTimelineService(
	repo repository.TimelineRepository,
	memorialRepo repository.MemorialRepository,
	quotaService *QuotaService,
) *TimelineService {
	return &TimelineService{
		repo:         repo,
		memorialRepo: memorialRepo,
		quotaService: quotaService,
	}
}

func (s *TimelineService) Add(userID, memorialID, title, description string, happenedOn *time.Time) (*model.TimelineEvent, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTimelineTitleRequired
	}

	// Verify ownership
	_, err := s.memorialRepo.ByID(userID, memorialID)
	if err != nil {
		return nil, err
	}

	decision, err := s.quotaService.CheckUsageLimits(userID, ActionAddTimelineEvent, ActionPayload{
		MemorialID: memorialID,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &QuotaExceededError{Decision: decision}
	}

	event := &model.TimelineEvent{
		ID:          uuid.New().String(),
		MemorialID:  memorialID,
		UserID:      userID,
		Title:       title,
		Description: description,
		HappenedOn:  happenedOn,
		CreatedAt:   time.Now(),
	}

	err = s.repo.Create(event)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline event: %w", err)
	}

	s.quotaService.refreshUsage(userID, memorialID)

	return event, nil
}

func (s *TimelineService) Events(userID, memorialID string) ([]*model.TimelineEvent, error) {
	// Verify ownership
	_, err := s.memorialRepo.ByID(userID, memorialID)
	if err != nil {
		return nil, err
	}

	return s.repo.Events(memorialID)
}

func (s *TimelineService) Delete(userID, eventID string) error {
	event, err := s.repo.ByID(eventID)
	if err != nil {
		return err
	}
	if event.UserID != userID {
		return repository.ErrTimelineEventNotFound
	}

	err = s.repo.Delete(eventID)
	if err != nil {
		return err
	}

	s.quotaService.refreshUsage(userID, event.MemorialID)

	return nil
}
