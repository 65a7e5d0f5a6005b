package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMemorialNotFound = errors.New("memorial not found")
)

type MemorialRepository interface {
	Create(memorial *model.Memorial) error
	ByID(userID, memorialID string) (*model.Memorial, error)
	BySlug(slug string) (*model.Memorial, error)
	Memorials(userID string) ([]*model.Memorial, error)
	// CountActive counts a user's memorials excluding soft-deleted ones.
	CountActive(userID string) (int, error)
	Update(memorial *model.Memorial) error
	SoftDelete(userID, memorialID string) error
}

type memorialRepository struct {
	db *sqlx.DB
}

func NewMemorialRepository(db *sqlx.DB) MemorialRepository {
	return &memorialRepository{db: db}
}

func (r *memorialRepository) Create(memorial *model.Memorial) error {
	query := `INSERT INTO memorials (id, user_id, slug, name, born_on, passed_on, story, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		memorial.ID,
		memorial.UserID,
		memorial.Slug,
		memorial.Name,
		memorial.BornOn,
		memorial.PassedOn,
		memorial.Story,
		memorial.Status,
		memorial.CreatedAt,
		memorial.UpdatedAt,
	)

	return err
}

func (r *memorialRepository) ByID(userID, memorialID string) (*model.Memorial, error) {
	memorial := &model.Memorial{}
	query := `SELECT * FROM memorials WHERE id = $1 AND user_id = $2 AND status != $3`

	err := r.db.Get(memorial, query, memorialID, userID, model.MemorialStatusDeleted)
	if err == sql.ErrNoRows {
		return nil, ErrMemorialNotFound
	}
	if err != nil {
		return nil, err
	}

	return memorial, nil
}

func (r *memorialRepository) BySlug(slug string) (*model.Memorial, error) {
	memorial := &model.Memorial{}
	query := `SELECT * FROM memorials WHERE slug = $1 AND status != $2`

	err := r.db.Get(memorial, query, slug, model.MemorialStatusDeleted)
	if err == sql.ErrNoRows {
		return nil, ErrMemorialNotFound
	}
	if err != nil {
		return nil, err
	}

	return memorial, nil
}

func (r *memorialRepository) Memorials(userID string) ([]*model.Memorial, error) {
	var memorials []*model.Memorial
	query := `SELECT * FROM memorials WHERE user_id = $1 AND status != $2 ORDER BY created_at DESC`

	err := r.db.Select(&memorials, query, userID, model.MemorialStatusDeleted)
	if err != nil {
		return nil, err
	}

	return memorials, nil
}

func (r *memorialRepository) CountActive(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memorials WHERE user_id = $1 AND status != $2`
	err := r.db.QueryRow(query, userID, model.MemorialStatusDeleted).Scan(&count)
	return count, err
}

func (r *memorialRepository) Update(memorial *model.Memorial) error {
	query := `UPDATE memorials
	          SET name = $1, born_on = $2, passed_on = $3, story = $4, status = $5, updated_at = $6
	          WHERE id = $7 AND user_id = $8`

	result, err := r.db.Exec(query,
		memorial.Name,
		memorial.BornOn,
		memorial.PassedOn,
		memorial.Story,
		memorial.Status,
		memorial.UpdatedAt,
		memorial.ID,
		memorial.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMemorialNotFound
	}

	return nil
}

func (r *memorialRepository) SoftDelete(userID, memorialID string) error {
	query := `UPDATE memorials SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`

	result, err := r.db.Exec(query, model.MemorialStatusDeleted, time.Now(), memorialID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMemorialNotFound
	}

	return nil
}
