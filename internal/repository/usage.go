package repository

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUsageNotFound = errors.New("memorial usage not found")
)

type UsageRepository interface {
	// ByUser returns all counter rows for a user. When the table is missing
	// an expected column (schema drift between deployments) it retries a
	// reduced projection and zero-fills the absent fields.
	ByUser(userID string) ([]model.MemorialUsage, error)
	ByMemorial(userID, memorialID string) (*model.MemorialUsage, error)
	Upsert(row *model.MemorialUsage) error
}

type usageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &usageRepository{db: db}
}

const usageColumns = `user_id, memorial_id, media_count, photo_count, video_count, media_size_mb, timeline_events, updated_at`

// reducedUsageColumns is the projection that has existed since the first
// schema version. Newer columns are zero-filled when absent.
const reducedUsageColumns = `user_id, memorial_id, media_count, media_size_mb`

func (r *usageRepository) ByUser(userID string) ([]model.MemorialUsage, error) {
	var rows []model.MemorialUsage
	query := `SELECT ` + usageColumns + ` FROM memorial_usage WHERE user_id = $1`

	err := r.db.Select(&rows, query, userID)
	if err == nil {
		return rows, nil
	}
	if !isMissingColumn(err) {
		return nil, err
	}

	slog.Warn("memorial_usage schema drift, retrying with reduced projection",
		"error", err,
		"user_id", userID,
	)

	rows = nil
	query = `SELECT ` + reducedUsageColumns + ` FROM memorial_usage WHERE user_id = $1`
	err = r.db.Select(&rows, query, userID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *usageRepository) ByMemorial(userID, memorialID string) (*model.MemorialUsage, error) {
	row := &model.MemorialUsage{}
	query := `SELECT ` + usageColumns + ` FROM memorial_usage WHERE user_id = $1 AND memorial_id = $2`

	err := r.db.Get(row, query, userID, memorialID)
	if err == sql.ErrNoRows {
		return nil, ErrUsageNotFound
	}
	if err != nil {
		return nil, err
	}

	return row, nil
}

// Upsert replaces the stored row wholesale. Concurrent writers are safe
// because every row is independently derived from the media and timeline
// tables, so last-writer-wins never loses information.
func (r *usageRepository) Upsert(row *model.MemorialUsage) error {
	query := `INSERT INTO memorial_usage (user_id, memorial_id, media_count, photo_count, video_count, media_size_mb, timeline_events, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (user_id, memorial_id) DO UPDATE SET
	            media_count = excluded.media_count,
	            photo_count = excluded.photo_count,
	            video_count = excluded.video_count,
	            media_size_mb = excluded.media_size_mb,
	            timeline_events = excluded.timeline_events,
	            updated_at = excluded.updated_at`

	_, err := r.db.Exec(query,
		row.UserID,
		row.MemorialID,
		row.MediaCount,
		row.PhotoCount,
		row.VideoCount,
		row.MediaSizeMB,
		row.TimelineEvents,
		row.UpdatedAt,
	)

	return err
}

// isMissingColumn reports whether an error is an unknown-column failure from
// sqlite ("no such column") or postgres (SQLSTATE 42703).
func isMissingColumn(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "no such column") {
		return true
	}
	if strings.Contains(msg, "SQLSTATE 42703") {
		return true
	}
	return strings.Contains(msg, "column") && strings.Contains(msg, "does not exist")
}
