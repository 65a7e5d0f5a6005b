package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VSD-Devs/sandalwood-memories/internal/db"
	"github.com/VSD-Devs/sandalwood-memories/internal/model"
)

// testDB opens an in-memory sqlite database with the full schema applied.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", "file::memory:")
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return database
}

func seedMemorial(t *testing.T, repo MemorialRepository, userID, id string) *model.Memorial {
	t.Helper()

	now := time.Now().UTC()
	memorial := &model.Memorial{
		ID:        id,
		UserID:    userID,
		Slug:      id + "-slug",
		Name:      "Margaret Wilson",
		Status:    model.MemorialStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(memorial))
	return memorial
}

func TestMemorialRepository(t *testing.T) {
	database := testDB(t)
	repo := NewMemorialRepository(database)

	memorial := seedMemorial(t, repo, "user-1", "mem-1")
	seedMemorial(t, repo, "user-1", "mem-2")
	seedMemorial(t, repo, "user-2", "mem-3")

	t.Run("ByID scopes to owner", func(t *testing.T) {
		got, err := repo.ByID("user-1", "mem-1")
		require.NoError(t, err)
		assert.Equal(t, memorial.Slug, got.Slug)

		_, err = repo.ByID("user-2", "mem-1")
		assert.ErrorIs(t, err, ErrMemorialNotFound)
	})

	t.Run("BySlug", func(t *testing.T) {
		got, err := repo.BySlug("mem-1-slug")
		require.NoError(t, err)
		assert.Equal(t, "mem-1", got.ID)

		_, err = repo.BySlug("nope")
		assert.ErrorIs(t, err, ErrMemorialNotFound)
	})

	t.Run("CountActive ignores soft-deleted", func(t *testing.T) {
		count, err := repo.CountActive("user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, repo.SoftDelete("user-1", "mem-2"))

		count, err = repo.CountActive("user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Update", func(t *testing.T) {
		memorial.Name = "Margaret Rose Wilson"
		memorial.Status = model.MemorialStatusPublished
		memorial.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(memorial))

		got, err := repo.ByID("user-1", "mem-1")
		require.NoError(t, err)
		assert.Equal(t, "Margaret Rose Wilson", got.Name)
		assert.Equal(t, model.MemorialStatusPublished, got.Status)
	})
}

func TestMediaRepositoryStats(t *testing.T) {
	database := testDB(t)
	memorialRepo := NewMemorialRepository(database)
	repo := NewMediaRepository(database)

	seedMemorial(t, memorialRepo, "user-1", "mem-1")

	now := time.Now().UTC()
	items := []*model.MediaItem{
		{ID: "m1", UserID: "user-1", MemorialID: "mem-1", Kind: model.MediaKindImage, Filename: "a.jpg", OriginalName: "a.jpg", SizeBytes: 2 << 20, StoragePath: "p/a", CreatedAt: now},
		{ID: "m2", UserID: "user-1", MemorialID: "mem-1", Kind: model.MediaKindImage, Filename: "b.jpg", OriginalName: "b.jpg", SizeBytes: 3 << 20, StoragePath: "p/b", CreatedAt: now},
		{ID: "m3", UserID: "user-1", MemorialID: "mem-1", Kind: model.MediaKindVideo, Filename: "c.mp4", OriginalName: "c.mp4", SizeBytes: 10 << 20, StoragePath: "p/c", CreatedAt: now},
		{ID: "m4", UserID: "user-1", MemorialID: "mem-1", Kind: model.MediaKindDocument, Filename: "d.pdf", OriginalName: "d.pdf", SizeBytes: 1 << 20, StoragePath: "p/d", CreatedAt: now},
	}
	for _, item := range items {
		require.NoError(t, repo.Create(item))
	}

	stats, err := repo.Stats("mem-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.MediaCount)
	assert.Equal(t, 2, stats.PhotoCount)
	assert.Equal(t, 1, stats.VideoCount)
	assert.InDelta(t, 16.0, stats.MediaSizeMB, 0.001)

	t.Run("empty memorial yields zero stats", func(t *testing.T) {
		stats, err := repo.Stats("no-such-memorial")
		require.NoError(t, err)
		assert.Zero(t, stats.MediaCount)
		assert.Zero(t, stats.MediaSizeMB)
	})

	t.Run("delete shrinks the stats", func(t *testing.T) {
		require.NoError(t, repo.Delete("m3"))

		stats, err := repo.Stats("mem-1")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.MediaCount)
		assert.Zero(t, stats.VideoCount)
	})
}

func TestUsageRepositoryUpsert(t *testing.T) {
	database := testDB(t)
	memorialRepo := NewMemorialRepository(database)
	repo := NewUsageRepository(database)

	seedMemorial(t, memorialRepo, "user-1", "mem-1")

	_, err := repo.ByMemorial("user-1", "mem-1")
	assert.ErrorIs(t, err, ErrUsageNotFound)

	row := &model.MemorialUsage{
		UserID: "user-1", MemorialID: "mem-1",
		MediaCount: 3, PhotoCount: 2, VideoCount: 1, MediaSizeMB: 12.5, TimelineEvents: 4,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(row))

	// A second upsert replaces the row instead of conflicting.
	row.PhotoCount = 3
	row.MediaSizeMB = 14.5
	require.NoError(t, repo.Upsert(row))

	got, err := repo.ByMemorial("user-1", "mem-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.PhotoCount)
	assert.InDelta(t, 14.5, got.MediaSizeMB, 0.001)

	rows, err := repo.ByUser("user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "mem-1", rows[0].MemorialID)
}

func TestUsageRepositorySchemaDrift(t *testing.T) {
	database := testDB(t)
	memorialRepo := NewMemorialRepository(database)
	repo := NewUsageRepository(database)

	seedMemorial(t, memorialRepo, "user-1", "mem-1")
	require.NoError(t, repo.Upsert(&model.MemorialUsage{
		UserID: "user-1", MemorialID: "mem-1",
		MediaCount: 5, PhotoCount: 4, MediaSizeMB: 9.5,
		UpdatedAt: time.Now().UTC(),
	}))

	// Simulate an older deployment whose table predates the newer columns.
	_, err := database.Exec(`ALTER TABLE memorial_usage DROP COLUMN photo_count`)
	require.NoError(t, err)
	_, err = database.Exec(`ALTER TABLE memorial_usage DROP COLUMN video_count`)
	require.NoError(t, err)
	_, err = database.Exec(`ALTER TABLE memorial_usage DROP COLUMN timeline_events`)
	require.NoError(t, err)
	_, err = database.Exec(`ALTER TABLE memorial_usage DROP COLUMN updated_at`)
	require.NoError(t, err)

	rows, err := repo.ByUser("user-1")
	require.NoError(t, err, "reduced projection absorbs the missing columns")
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].MediaCount)
	assert.InDelta(t, 9.5, rows[0].MediaSizeMB, 0.001)
	assert.Zero(t, rows[0].PhotoCount, "absent columns zero-fill")
	assert.Zero(t, rows[0].TimelineEvents)
}

func TestIsMissingColumn(t *testing.T) {
	t.Parallel()

	assert.True(t, isMissingColumn(errors.New("SQL logic error: no such column: photo_count (1)")))
	assert.True(t, isMissingColumn(errors.New(`ERROR: column "photo_count" does not exist (SQLSTATE 42703)`)))
	assert.False(t, isMissingColumn(errors.New("no such table: memorial_usage")))
	assert.False(t, isMissingColumn(errors.New("connection refused")))
}

func TestTimelineRepository(t *testing.T) {
	database := testDB(t)
	memorialRepo := NewMemorialRepository(database)
	repo := NewTimelineRepository(database)

	seedMemorial(t, memorialRepo, "user-1", "mem-1")

	now := time.Now().UTC()
	happened := time.Date(1952, 6, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&model.TimelineEvent{
		ID: "t1", MemorialID: "mem-1", UserID: "user-1",
		Title: "Born", HappenedOn: &happened, CreatedAt: now,
	}))
	require.NoError(t, repo.Create(&model.TimelineEvent{
		ID: "t2", MemorialID: "mem-1", UserID: "user-1",
		Title: "Married", CreatedAt: now,
	}))

	count, err := repo.CountByMemorial("mem-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	events, err := repo.Events("mem-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)

	require.NoError(t, repo.Delete("t1"))
	count, err = repo.CountByMemorial("mem-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Deleting an already-deleted event is a no-op.
	assert.NoError(t, repo.Delete("t1"))
}

func TestSubscriptionRepository(t *testing.T) {
	database := testDB(t)
	repo := NewSubscriptionRepository(database)

	_, err := repo.ByUserID("user-1")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	now := time.Now().UTC()
	sub := &model.Subscription{
		ID: "sub-1", UserID: "user-1", PlanID: model.PlanPremium,
		Status: model.SubscriptionStatusActive, Provider: "stripe",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(sub))

	got, err := repo.ByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPremium, got.PlanID)

	got.Status = model.SubscriptionStatusCancelled
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(got))

	got, err = repo.ByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, got.Plan())
}
