package repository

import (
	"database/sql"
	"errors"

	"github.com/VSD-Devs/sandalwood-memories/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTimelineEventNotFound = errors.New("timeline event not found")
)

type TimelineRepository interface {
	Create(event *model.TimelineEvent) error
	ByID(id string) (*model.TimelineEvent, error)
	Events(memorialID string) ([]*model.TimelineEvent, error)
	CountByMemorial(memorialID string) (int, error)
	Delete(id string) error
}

type timelineRepository struct {
	db *sqlx.DB
}

func NewTimelineRepository(db *sqlx.DB) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Create(event *model.TimelineEvent) error {
	query := `INSERT INTO timeline_events (id, memorial_id, user_id, title, description, happened_on, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		event.ID,
		event.MemorialID,
		event.UserID,
		event.Title,
		event.Description,
		event.HappenedOn,
		event.CreatedAt,
	)

	return err
}

func (r *timelineRepository) ByID(id string) (*model.TimelineEvent, error) {
	event := &model.TimelineEvent{}
	query := `SELECT * FROM timeline_events WHERE id = $1`

	err := r.db.Get(event, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrTimelineEventNotFound
	}

	return event, err
}

func (r *timelineRepository) Events(memorialID string) ([]*model.TimelineEvent, error) {
	var events []*model.TimelineEvent
	query := `SELECT * FROM timeline_events WHERE memorial_id = $1 ORDER BY happened_on ASC, created_at ASC`

	err := r.db.Select(&events, query, memorialID)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *timelineRepository) CountByMemorial(memorialID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM timeline_events WHERE memorial_id = $1`
	err := r.db.QueryRow(query, memorialID).Scan(&count)
	return count, err
}

func (r *timelineRepository) Delete(id string) error {
	query := `DELETE FROM timeline_events WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}
