package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/markdown"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrMemorialNameRequired = errors.New("memorial name is required")
)

// QuotaExceededError carries a quota denial to the caller so it can render
// the precomputed message and upgrade hint without re-deriving them.
type QuotaExceededError struct {
	Decision Decision
}

func (e *QuotaExceededError) Error() string {
	return e.Decision.Message
}

type MemorialService struct {
	repo         repository.MemorialRepository
	quotaService *QuotaService
	parser       *markdown.Parser
}

func NewMemorialService(repo repository.MemorialRepository, quotaService *QuotaService) *MemorialService {
	return &MemorialService{
		repo:         repo,
		quotaService: quotaService,
		parser:       markdown.NewParser(),
	}
}

func (s *MemorialService) Create(userID, name, story string, bornOn, passedOn *time.Time) (*model.Memorial, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMemorialNameRequired
	}

	decision, err := s.quotaService.CheckUsageLimits(userID, ActionCreateMemorial, ActionPayload{})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &QuotaExceededError{Decision: decision}
	}

	now := time.Now()
	memorial := &model.Memorial{
		ID:        uuid.New().String(),
		UserID:    userID,
		Slug:      slugify(name),
		Name:      name,
		BornOn:    bornOn,
		PassedOn:  passedOn,
		Story:     story,
		Status:    model.MemorialStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(memorial)
	if err != nil {
		return nil, fmt.Errorf("failed to create memorial: %w", err)
	}

	return memorial, nil
}

func (s *MemorialService) ByID(userID, memorialID string) (*model.Memorial, error) {
	return s.repo.ByID(userID, memorialID)
}

func (s *MemorialService) BySlug(slug string) (*model.Memorial, error) {
	return s.repo.BySlug(slug)
}

func (s *MemorialService) Memorials(userID string) ([]*model.Memorial, error) {
	return s.repo.Memorials(userID)
}

func (s *MemorialService) Update(userID, memorialID, name, story string, bornOn, passedOn *time.Time) error {
	// Verify ownership
	memorial, err := s.repo.ByID(userID, memorialID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		return ErrMemorialNameRequired
	}

	memorial.Name = name
	memorial.Story = story
	memorial.BornOn = bornOn
	memorial.PassedOn = passedOn
	memorial.UpdatedAt = time.Now()

	return s.repo.Update(memorial)
}

func (s *MemorialService) Publish(userID, memorialID string) error {
	memorial, err := s.repo.ByID(userID, memorialID)
	if err != nil {
		return err
	}

	memorial.Status = model.MemorialStatusPublished
	memorial.UpdatedAt = time.Now()

	return s.repo.Update(memorial)
}

// Delete soft-deletes the memorial. Counter rows are left in place: the
// aggregator's memorial count excludes deleted memorials on its own, and the
// datastore owns any cascading cleanup.
func (s *MemorialService) Delete(userID, memorialID string) error {
	// Verify ownership
	_, err := s.repo.ByID(userID, memorialID)
	if err != nil {
		return err
	}

	return s.repo.SoftDelete(userID, memorialID)
}

// StoryHTML renders the memorial's life story from markdown.
func (s *MemorialService) StoryHTML(memorial *model.Memorial) (string, error) {
	if memorial.Story == "" {
		return "", nil
	}

	html, err := s.parser.Parse([]byte(memorial.Story))
	if err != nil {
		return "", fmt.Errorf("failed to render story: %w", err)
	}

	return string(html), nil
}

// slugify turns a memorial name into a URL slug with a short random suffix
// so names never collide.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	suffix := uuid.New().String()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
