package repository

import (
	"database/sql"
	"errors"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMediaNotFound = errors.New("media item not found")
)

type MediaRepository interface {
	Create(item *model.MediaItem) error
	ByID(id string) (*model.MediaItem, error)
	ByMemorial(memorialID string) ([]*model.MediaItem, error)
	// Stats derives the authoritative counters for a memorial straight from
	// the media rows. The usage recorder copies them into memorial_usage.
	Stats(memorialID string) (*model.MediaStats, error)
	Delete(id string) error
}

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(item *model.MediaItem) error {
	query := `INSERT INTO media_items (id, user_id, memorial_id, kind, filename, original_name, mime_type, size_bytes, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		item.ID,
		item.UserID,
		item.MemorialID,
		item.Kind,
		item.Filename,
		item.OriginalName,
		item.MimeType,
		item.SizeBytes,
		item.StoragePath,
		item.CreatedAt,
	)

	return err
}

func (r *mediaRepository) ByID(id string) (*model.MediaItem, error) {
	item := &model.MediaItem{}
	query := `SELECT * FROM media_items WHERE id = $1`

	err := r.db.Get(item, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}

	return item, err
}

func (r *mediaRepository) ByMemorial(memorialID string) ([]*model.MediaItem, error) {
	var items []*model.MediaItem
	query := `SELECT * FROM media_items WHERE memorial_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&items, query, memorialID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *mediaRepository) Stats(memorialID string) (*model.MediaStats, error) {
	stats := &model.MediaStats{}
	query := `SELECT
	            COUNT(*) AS media_count,
	            COALESCE(SUM(CASE WHEN kind = $1 THEN 1 ELSE 0 END), 0) AS photo_count,
	            COALESCE(SUM(CASE WHEN kind = $2 THEN 1 ELSE 0 END), 0) AS video_count,
	            COALESCE(SUM(size_bytes), 0) / 1048576.0 AS media_size_mb
	          FROM media_items WHERE memorial_id = $3`

	err := r.db.Get(stats, query, model.MediaKindImage, model.MediaKindVideo, memorialID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *mediaRepository) Delete(id string) error {
	query := `DELETE FROM media_items WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}
