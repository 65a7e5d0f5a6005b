package model

import (
	"time"
)

type TimelineEvent struct {
	ID          string     `db:"id"`
	MemorialID  string     `db:"memorial_id"`
	UserID      string     `db:"user_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	HappenedOn  *time.Time `db:"happened_on"`
	CreatedAt   time.Time  `db:"created_at"`
}
