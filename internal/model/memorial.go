package model

import (
	"time"
)

const (
	MemorialStatusDraft     = "draft"
	MemorialStatusPublished = "published"
	MemorialStatusDeleted   = "deleted"
)

type Memorial struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Slug      string     `db:"slug"`
	Name      string     `db:"name"`
	BornOn    *time.Time `db:"born_on"`
	PassedOn  *time.Time `db:"passed_on"`
	Story     string     `db:"story"` // markdown source
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func (m *Memorial) IsDeleted() bool {
	return m.Status == MemorialStatusDeleted
}
