package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
)

func newMemorialFixture() (*MemorialService, *fakeMemorialRepo, *fakeSubscriptionRepo) {
	quotaService, memorialRepo, _, _, _, subscriptionRepo := newQuotaFixture(true)
	return NewMemorialService(memorialRepo, quotaService), memorialRepo, subscriptionRepo
}

func TestMemorialCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates a draft with a slug", func(t *testing.T) {
		t.Parallel()

		memorialService, _, _ := newMemorialFixture()

		memorial, err := memorialService.Create("user-1", "Margaret Rose Wilson", "She loved her garden.", nil, nil)
		require.NoError(t, err)

		assert.NotEmpty(t, memorial.ID)
		assert.Equal(t, model.MemorialStatusDraft, memorial.Status)
		assert.True(t, strings.HasPrefix(memorial.Slug, "margaret-rose-wilson-"), "slug was %q", memorial.Slug)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		memorialService, _, _ := newMemorialFixture()

		_, err := memorialService.Create("user-1", "   ", "", nil, nil)
		assert.ErrorIs(t, err, ErrMemorialNameRequired)
	})

	t.Run("free plan second memorial is a quota denial", func(t *testing.T) {
		t.Parallel()

		memorialService, _, _ := newMemorialFixture()

		_, err := memorialService.Create("user-1", "First", "", nil, nil)
		require.NoError(t, err)

		_, err = memorialService.Create("user-1", "Second", "", nil, nil)
		require.Error(t, err)

		var quotaErr *QuotaExceededError
		require.ErrorAs(t, err, &quotaErr)
		assert.True(t, quotaErr.Decision.UpgradeRequired)
		assert.Contains(t, quotaErr.Decision.Message, "1 memorial")
	})

	t.Run("premium user creates several", func(t *testing.T) {
		t.Parallel()

		memorialService, _, subscriptionRepo := newMemorialFixture()
		require.NoError(t, subscriptionRepo.Create(&model.Subscription{
			ID: "sub-1", UserID: "user-1", PlanID: model.PlanPremium,
			Status: model.SubscriptionStatusActive,
		}))

		for _, name := range []string{"First", "Second", "Third"} {
			_, err := memorialService.Create("user-1", name, "", nil, nil)
			require.NoError(t, err)
		}
	})
}

func TestMemorialDeleteFreesTheSlot(t *testing.T) {
	t.Parallel()

	memorialService, _, _ := newMemorialFixture()

	memorial, err := memorialService.Create("user-1", "First", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, memorialService.Delete("user-1", memorial.ID))

	// The free cap counts active memorials only.
	_, err = memorialService.Create("user-1", "Second", "", nil, nil)
	assert.NoError(t, err)
}

func TestMemorialOwnership(t *testing.T) {
	t.Parallel()

	memorialService, _, _ := newMemorialFixture()

	memorial, err := memorialService.Create("user-1", "First", "", nil, nil)
	require.NoError(t, err)

	_, err = memorialService.ByID("user-2", memorial.ID)
	assert.ErrorIs(t, err, repository.ErrMemorialNotFound)

	err = memorialService.Delete("user-2", memorial.ID)
	assert.ErrorIs(t, err, repository.ErrMemorialNotFound)
}

func TestMemorialStoryHTML(t *testing.T) {
	t.Parallel()

	memorialService, _, _ := newMemorialFixture()

	html, err := memorialService.StoryHTML(&model.Memorial{Story: "# A life well lived"})
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")

	html, err = memorialService.StoryHTML(&model.Memorial{})
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Margaret Rose Wilson", "margaret-rose-wilson-"},
		{"  O'Brien,  John  ", "o-brien-john-"},
		{"Ænne", "nne-"},
	}

	for _, tt := range tests {
		slug := slugify(tt.name)
		assert.True(t, strings.HasPrefix(slug, tt.want), "slugify(%q) = %q, want prefix %q", tt.name, slug, tt.want)
		assert.Len(t, slug, len(tt.want)+8)
	}

	// A name with no usable characters still yields a non-empty slug.
	assert.Len(t, slugify("!!!"), 8)
}
