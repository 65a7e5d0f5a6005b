package model

import (
	"time"
)

// MemorialUsage is the persisted per-(user, memorial) counter row. It is a
// read/replace cache over the media and timeline tables, never an
// authoritative ledger: the recorder always rewrites it from source records.
type MemorialUsage struct {
	UserID         string    `db:"user_id"`
	MemorialID     string    `db:"memorial_id"`
	MediaCount     int       `db:"media_count"`
	PhotoCount     int       `db:"photo_count"`
	VideoCount     int       `db:"video_count"`
	MediaSizeMB    float64   `db:"media_size_mb"`
	TimelineEvents int       `db:"timeline_events"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ZeroMemorialUsage is the canonical "missing row means zero usage" default,
// used whenever a lookup misses instead of inline fallbacks.
func ZeroMemorialUsage(memorialID string) MemorialUsage {
	return MemorialUsage{MemorialID: memorialID}
}

// UserUsage is a derived snapshot of a user's consumption. It is recomputed
// on demand and never stored.
type UserUsage struct {
	MemorialCount  int
	TotalStorageMB float64
	MemorialUsage  []MemorialUsage
}

// ByMemorial returns the usage row for a memorial, or the zero row when the
// memorial has no counters yet.
func (u *UserUsage) ByMemorial(memorialID string) MemorialUsage {
	for _, row := range u.MemorialUsage {
		if row.MemorialID == memorialID {
			return row
		}
	}
	return ZeroMemorialUsage(memorialID)
}

// UsageCounters carries partial counter values for callers that only have
// some counters cheaply available. Nil fields keep the stored value.
type UsageCounters struct {
	MediaCount     *int
	PhotoCount     *int
	VideoCount     *int
	MediaSizeMB    *float64
	TimelineEvents *int
}
