package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
)

func TestSubscriptionPlan(t *testing.T) {
	t.Parallel()

	t.Run("no row resolves to free", func(t *testing.T) {
		t.Parallel()

		subscriptionService := NewSubscriptionService(newFakeSubscriptionRepo())
		assert.Equal(t, model.PlanFree, subscriptionService.Plan("user-1"))
	})

	t.Run("active paid subscription resolves to its plan", func(t *testing.T) {
		t.Parallel()

		repo := newFakeSubscriptionRepo()
		require.NoError(t, repo.Create(&model.Subscription{
			ID: "sub-1", UserID: "user-1", PlanID: model.PlanFullyManaged,
			Status: model.SubscriptionStatusActive,
		}))

		subscriptionService := NewSubscriptionService(repo)
		assert.Equal(t, model.PlanFullyManaged, subscriptionService.Plan("user-1"))
	})

	t.Run("cancelled subscription resolves to free", func(t *testing.T) {
		t.Parallel()

		repo := newFakeSubscriptionRepo()
		require.NoError(t, repo.Create(&model.Subscription{
			ID: "sub-1", UserID: "user-1", PlanID: model.PlanPremium,
			Status: model.SubscriptionStatusCancelled,
		}))

		subscriptionService := NewSubscriptionService(repo)
		assert.Equal(t, model.PlanFree, subscriptionService.Plan("user-1"))
	})

	t.Run("nil repo resolves to free", func(t *testing.T) {
		t.Parallel()

		subscriptionService := NewSubscriptionService(nil)
		assert.Equal(t, model.PlanFree, subscriptionService.Plan("user-1"))
	})
}

func TestApplyPlanChange(t *testing.T) {
	t.Parallel()

	t.Run("creates a row for a first-time subscriber", func(t *testing.T) {
		t.Parallel()

		repo := newFakeSubscriptionRepo()
		subscriptionService := NewSubscriptionService(repo)

		periodEnd := time.Now().Add(30 * 24 * time.Hour)
		subID := "provider-sub-1"
		require.NoError(t, subscriptionService.ApplyPlanChange("user-1", model.PlanPremium, "stripe", &subID, &periodEnd))

		assert.Equal(t, model.PlanPremium, subscriptionService.Plan("user-1"))
	})

	t.Run("updates an existing row", func(t *testing.T) {
		t.Parallel()

		repo := newFakeSubscriptionRepo()
		subscriptionService := NewSubscriptionService(repo)
		require.NoError(t, subscriptionService.CreateFreeSubscription("user-1"))

		require.NoError(t, subscriptionService.ApplyPlanChange("user-1", model.PlanFullyManaged, "stripe", nil, nil))
		assert.Equal(t, model.PlanFullyManaged, subscriptionService.Plan("user-1"))

		// Downgrade back down.
		require.NoError(t, subscriptionService.ApplyPlanChange("user-1", model.PlanFree, "stripe", nil, nil))
		assert.Equal(t, model.PlanFree, subscriptionService.Plan("user-1"))
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	repo := newFakeSubscriptionRepo()
	subscriptionService := NewSubscriptionService(repo)

	require.NoError(t, subscriptionService.ApplyPlanChange("user-1", model.PlanPremium, "stripe", nil, nil))
	require.NoError(t, subscriptionService.Cancel("user-1"))

	assert.Equal(t, model.PlanFree, subscriptionService.Plan("user-1"))

	sub, err := subscriptionService.Subscription("user-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.IsPaid())
}
