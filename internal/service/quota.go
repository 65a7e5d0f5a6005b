package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
)

// Action is the kind of mutation a caller wants to perform.
type Action string

const (
	ActionCreateMemorial   Action = "create_memorial"
	ActionUploadMedia      Action = "upload_media"
	ActionAddTimelineEvent Action = "add_timeline_event"
)

// UploadItem describes a file the caller intends to store. The engine only
// ever sees this value type, never a live file handle.
type UploadItem struct {
	Kind      string
	SizeBytes int64
}

func (i UploadItem) SizeMB() float64 {
	return float64(i.SizeBytes) / (1 << 20)
}

// ActionPayload carries the action-specific context for a quota check.
// create_memorial ignores it entirely.
type ActionPayload struct {
	MemorialID string
	Items      []UploadItem
}

// Decision is the outcome of a quota check. A denial is a value, not an
// error: Message names the limit, the current count and the requested
// amount, and UpgradeRequired says whether a plan change would lift it.
type Decision struct {
	Allowed         bool
	Message         string
	UpgradeRequired bool
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(message string, upgrade bool) Decision {
	return Decision{Message: message, UpgradeRequired: upgrade}
}

// QuotaService aggregates usage, evaluates actions against plan limits and
// keeps the per-memorial counter rows fresh. It is stateless between calls
// and provides no cross-request coordination: the check-then-act window is
// an accepted soft-limit race, self-corrected by the next recompute.
type QuotaService struct {
	memorialRepo        repository.MemorialRepository
	mediaRepo           repository.MediaRepository
	timelineRepo        repository.TimelineRepository
	usageRepo           repository.UsageRepository
	subscriptionService *SubscriptionService

	// datastoreAvailable is injected at construction so degraded and local
	// environments fail open instead of blocking every action.
	datastoreAvailable bool
}

func NewQuotaService(
	memorialRepo repository.MemorialRepository,
	mediaRepo repository.MediaRepository,
	timelineRepo repository.TimelineRepository,
	usageRepo repository.UsageRepository,
	subscriptionService *SubscriptionService,
	datastoreAvailable bool,
) *QuotaService {
	return &QuotaService{
		memorialRepo:        memorialRepo,
		mediaRepo:           mediaRepo,
		timelineRepo:        timelineRepo,
		usageRepo:           usageRepo,
		subscriptionService: subscriptionService,
		datastoreAvailable:  datastoreAvailable,
	}
}

// CheckUsageLimits resolves the caller's plan, aggregates current usage and
// evaluates the proposed action. With no datastore configured it allows
// everything.
func (s *QuotaService) CheckUsageLimits(userID string, action Action, payload ActionPayload) (Decision, error) {
	if !s.datastoreAvailable {
		return allow(), nil
	}

	plan := s.subscriptionService.Plan(userID)
	limits := model.LimitsFor(plan)

	usage, err := s.UserUsage(userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	return Evaluate(plan, limits, usage, action, payload), nil
}

// UserUsage recomputes a user's consumption snapshot on demand. Calling it
// twice with no intervening mutations yields identical snapshots.
func (s *QuotaService) UserUsage(userID string) (*model.UserUsage, error) {
	if !s.datastoreAvailable {
		return &model.UserUsage{}, nil
	}

	count, err := s.memorialRepo.CountActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count memorials: %w", err)
	}

	rows, err := s.usageRepo.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memorial usage: %w", err)
	}

	usage := &model.UserUsage{
		MemorialCount: count,
		MemorialUsage: rows,
	}
	for _, row := range rows {
		usage.TotalStorageMB += row.MediaSizeMB
	}

	return usage, nil
}

// RecordMemorialUsage recomputes the counter row for one memorial from the
// authoritative media and timeline tables and replaces the stored row. It
// never applies a delta, so any drift from partial failures or concurrent
// writers heals on the next call.
func (s *QuotaService) RecordMemorialUsage(userID, memorialID string) error {
	if !s.datastoreAvailable {
		return nil
	}

	stats, err := s.mediaRepo.Stats(memorialID)
	if err != nil {
		return fmt.Errorf("failed to compute media stats: %w", err)
	}

	events, err := s.timelineRepo.CountByMemorial(memorialID)
	if err != nil {
		return fmt.Errorf("failed to count timeline events: %w", err)
	}

	row := &model.MemorialUsage{
		UserID:         userID,
		MemorialID:     memorialID,
		MediaCount:     stats.MediaCount,
		PhotoCount:     stats.PhotoCount,
		VideoCount:     stats.VideoCount,
		MediaSizeMB:    stats.MediaSizeMB,
		TimelineEvents: events,
		UpdatedAt:      time.Now(),
	}

	err = s.usageRepo.Upsert(row)
	if err != nil {
		return fmt.Errorf("failed to upsert memorial usage: %w", err)
	}

	return nil
}

// UpdateMemorialUsage merges partial counters over the stored row and
// replaces it. Callers that can recompute cheaply should prefer
// RecordMemorialUsage; this exists for callers that only hold some counters.
func (s *QuotaService) UpdateMemorialUsage(userID, memorialID string, counters model.UsageCounters) error {
	if !s.datastoreAvailable {
		return nil
	}

	existing, err := s.usageRepo.ByMemorial(userID, memorialID)
	if err == repository.ErrUsageNotFound {
		zero := model.ZeroMemorialUsage(memorialID)
		zero.UserID = userID
		existing = &zero
	} else if err != nil {
		return fmt.Errorf("failed to load memorial usage: %w", err)
	}

	if counters.MediaCount != nil {
		existing.MediaCount = *counters.MediaCount
	}
	if counters.PhotoCount != nil {
		existing.PhotoCount = *counters.PhotoCount
	}
	if counters.VideoCount != nil {
		existing.VideoCount = *counters.VideoCount
	}
	if counters.MediaSizeMB != nil {
		existing.MediaSizeMB = *counters.MediaSizeMB
	}
	if counters.TimelineEvents != nil {
		existing.TimelineEvents = *counters.TimelineEvents
	}
	existing.UpdatedAt = time.Now()

	err = s.usageRepo.Upsert(existing)
	if err != nil {
		return fmt.Errorf("failed to upsert memorial usage: %w", err)
	}

	return nil
}

// refreshUsage is the best-effort post-mutation hook. Bookkeeping failures
// are logged and never propagated: they must not block or reverse a
// mutation that already succeeded.
func (s *QuotaService) refreshUsage(userID, memorialID string) {
	err := s.RecordMemorialUsage(userID, memorialID)
	if err != nil {
		slog.Error("failed to refresh memorial usage",
			"error", err,
			"user_id", userID,
			"memorial_id", memorialID,
		)
	}
}

// quota dimensions, used to ask whether a higher tier lifts a denied limit.
type dimension int

const (
	dimMemorials dimension = iota
	dimPhotos
	dimVideos
	dimVideoSize
	dimStorage
	dimTimeline
)

func limitFor(limits model.UsageLimits, dim dimension) int {
	switch dim {
	case dimMemorials:
		return limits.MaxMemorials
	case dimPhotos:
		return limits.MaxPhotosPerMemorial
	case dimVideos:
		return limits.MaxVideosPerMemorial
	case dimVideoSize:
		return limits.MaxVideoSizeMB
	case dimStorage:
		return limits.MaxTotalStorageMB
	case dimTimeline:
		return limits.MaxTimelineEvents
	}
	return model.Unlimited
}

// upgradeLifts reports whether any tier above the current plan would permit
// the needed amount on the given dimension. When it returns false the
// request is over every plan's cap and no upgrade helps.
func upgradeLifts(plan model.PlanID, dim dimension, needed float64) bool {
	for _, higher := range model.HigherPlans(plan) {
		limit := limitFor(model.LimitsFor(higher), dim)
		if limit == model.Unlimited || float64(limit) >= needed {
			return true
		}
	}
	return false
}

// Evaluate is the pure decision function: plan limits plus a usage snapshot
// in, allow/deny out. Checks run in a fixed order per action and the first
// violation wins. Unrecognized actions are rejected.
func Evaluate(plan model.PlanID, limits model.UsageLimits, usage *model.UserUsage, action Action, payload ActionPayload) Decision {
	switch action {
	case ActionCreateMemorial:
		return evaluateCreateMemorial(plan, limits, usage)
	case ActionUploadMedia:
		return evaluateUploadMedia(plan, limits, usage, payload)
	case ActionAddTimelineEvent:
		return evaluateAddTimelineEvent(plan, limits, usage, payload)
	}
	return deny(fmt.Sprintf("unknown action %q", action), false)
}

func evaluateCreateMemorial(plan model.PlanID, limits model.UsageLimits, usage *model.UserUsage) Decision {
	if limits.MaxMemorials != model.Unlimited && usage.MemorialCount >= limits.MaxMemorials {
		msg := fmt.Sprintf("Your plan allows %d memorial(s) and you currently have %d.",
			limits.MaxMemorials, usage.MemorialCount)
		return deny(msg, upgradeLifts(plan, dimMemorials, float64(usage.MemorialCount+1)))
	}
	return allow()
}

func evaluateUploadMedia(plan model.PlanID, limits model.UsageLimits, usage *model.UserUsage, payload ActionPayload) Decision {
	current := usage.ByMemorial(payload.MemorialID)

	var photos, videos int
	var requestedMB float64
	for _, item := range payload.Items {
		switch item.Kind {
		case model.MediaKindImage:
			photos++
		case model.MediaKindVideo:
			videos++
		}
		requestedMB += item.SizeMB()
	}

	if limits.MaxPhotosPerMemorial != model.Unlimited && current.PhotoCount+photos > limits.MaxPhotosPerMemorial {
		msg := fmt.Sprintf("This memorial allows %d photo(s); it has %d and you are adding %d.",
			limits.MaxPhotosPerMemorial, current.PhotoCount, photos)
		return deny(msg, upgradeLifts(plan, dimPhotos, float64(current.PhotoCount+photos)))
	}

	if limits.MaxVideosPerMemorial != model.Unlimited && current.VideoCount+videos > limits.MaxVideosPerMemorial {
		msg := fmt.Sprintf("This memorial allows %d video(s); it has %d and you are adding %d.",
			limits.MaxVideosPerMemorial, current.VideoCount, videos)
		return deny(msg, upgradeLifts(plan, dimVideos, float64(current.VideoCount+videos)))
	}

	if limits.MaxVideoSizeMB != model.Unlimited {
		for _, item := range payload.Items {
			if item.Kind != model.MediaKindVideo {
				continue
			}
			// boundary is inclusive: a video exactly at the cap is allowed
			if item.SizeMB() > float64(limits.MaxVideoSizeMB) {
				msg := fmt.Sprintf("Videos are limited to %d MB each; this one is %.1f MB.",
					limits.MaxVideoSizeMB, item.SizeMB())
				return deny(msg, upgradeLifts(plan, dimVideoSize, item.SizeMB()))
			}
		}
	}

	if limits.MaxTotalStorageMB != model.Unlimited && usage.TotalStorageMB+requestedMB > float64(limits.MaxTotalStorageMB) {
		msg := fmt.Sprintf("Your plan includes %d MB of storage; you are using %.1f MB and this upload adds %.1f MB.",
			limits.MaxTotalStorageMB, usage.TotalStorageMB, requestedMB)
		return deny(msg, upgradeLifts(plan, dimStorage, usage.TotalStorageMB+requestedMB))
	}

	return allow()
}

func evaluateAddTimelineEvent(plan model.PlanID, limits model.UsageLimits, usage *model.UserUsage, payload ActionPayload) Decision {
	current := usage.ByMemorial(payload.MemorialID)

	if limits.MaxTimelineEvents != model.Unlimited && current.TimelineEvents >= limits.MaxTimelineEvents {
		msg := fmt.Sprintf("This memorial allows %d timeline event(s) and already has %d.",
			limits.MaxTimelineEvents, current.TimelineEvents)
		return deny(msg, upgradeLifts(plan, dimTimeline, float64(current.TimelineEvents+1)))
	}

	return allow()
}
