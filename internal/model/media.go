package model

import (
	"time"
)

const (
	MediaKindImage    = "image"
	MediaKindVideo    = "video"
	MediaKindDocument = "document"
)

type MediaItem struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	MemorialID   string    `db:"memorial_id"`
	Kind         string    `db:"kind"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	SizeBytes    int64     `db:"size_bytes"`
	StoragePath  string    `db:"storage_path"`
	CreatedAt    time.Time `db:"created_at"`
}

// MediaStats are the authoritative per-memorial counters derived from the
// media table. The usage recorder copies them into memorial_usage.
type MediaStats struct {
	MediaCount  int     `db:"media_count"`
	PhotoCount  int     `db:"photo_count"`
	VideoCount  int     `db:"video_count"`
	MediaSizeMB float64 `db:"media_size_mb"`
}
