package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/google/uuid"
)

type SubscriptionService struct {
	// repo is nil when no datastore is configured; resolution then always
	// yields the free plan and writes become no-ops.
	repo repository.SubscriptionRepository
}

func NewSubscriptionService(repo repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

func (s *SubscriptionService) CreateFreeSubscription(userID string) error {
	if s.repo == nil {
		return nil
	}

	now := time.Now()
	subscription := &model.Subscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanID:    model.PlanFree,
		Status:    model.SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(subscription)
	if err != nil {
		return fmt.Errorf("failed to create free subscription: %w", err)
	}

	return nil
}

func (s *SubscriptionService) Subscription(userID string) (*model.Subscription, error) {
	if s.repo == nil {
		return nil, repository.ErrSubscriptionNotFound
	}
	return s.repo.ByUserID(userID)
}

// Plan resolves the user's current plan tier. Any resolution failure
// (missing row, inactive subscription, query error) falls back to the free
// tier so enforcement stays restrictive rather than permissive.
func (s *SubscriptionService) Plan(userID string) model.PlanID {
	if s.repo == nil {
		return model.PlanFree
	}

	subscription, err := s.repo.ByUserID(userID)
	if err != nil {
		if err != repository.ErrSubscriptionNotFound {
			slog.Warn("failed to resolve subscription, assuming free plan", "error", err, "user_id", userID)
		}
		return model.PlanFree
	}

	return subscription.Plan()
}

// ApplyPlanChange records a plan transition reported by the external payment
// provider. The provider lifecycle itself (checkout, webhooks, renewal) is
// outside this service; it only persists the outcome.
func (s *SubscriptionService) ApplyPlanChange(userID string, plan model.PlanID, provider string, providerSubID *string, periodEnd *time.Time) error {
	if s.repo == nil {
		return repository.ErrSubscriptionNotFound
	}

	subscription, err := s.repo.ByUserID(userID)
	if err == repository.ErrSubscriptionNotFound {
		now := time.Now()
		subscription = &model.Subscription{
			ID:                     uuid.New().String(),
			UserID:                 userID,
			PlanID:                 plan,
			Status:                 model.SubscriptionStatusActive,
			Provider:               provider,
			ProviderSubscriptionID: providerSubID,
			CurrentPeriodEnd:       periodEnd,
			CreatedAt:              now,
			UpdatedAt:              now,
		}

		createErr := s.repo.Create(subscription)
		if createErr != nil {
			return fmt.Errorf("failed to create subscription: %w", createErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	subscription.PlanID = plan
	subscription.Status = model.SubscriptionStatusActive
	subscription.Provider = provider
	subscription.ProviderSubscriptionID = providerSubID
	subscription.CurrentPeriodEnd = periodEnd
	subscription.UpdatedAt = time.Now()

	err = s.repo.Update(subscription)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

// Cancel marks the subscription cancelled. Quota resolution treats it as
// free from the next check onward.
func (s *SubscriptionService) Cancel(userID string) error {
	if s.repo == nil {
		return repository.ErrSubscriptionNotFound
	}

	subscription, err := s.repo.ByUserID(userID)
	if err != nil {
		return err
	}

	subscription.Status = model.SubscriptionStatusCancelled
	subscription.UpdatedAt = time.Now()

	return s.repo.Update(subscription)
}
