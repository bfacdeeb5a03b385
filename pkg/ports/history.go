package ports

import (
	"context"
	"time"
)

// PostRecord is one successful publication.
type PostRecord struct {
	ContentID string
	Platform  string
	VideoID   string
	PostedAt  time.Time
}

// HistoryStore persists which content items were published where.
type HistoryStore interface {
	// Record stores a publication.
	Record(ctx context.Context, rec PostRecord) error

	// PostedIDs returns the content IDs already published on platform.
	PostedIDs(ctx context.Context, platform string) (map[string]bool, error)

	// CountSince returns how many posts were made on platform at or after since.
	CountSince(ctx context.Context, platform string, since time.Time) (int, error)

	// Recent returns the latest records across platforms, newest first.
	Recent(ctx context.Context, limit int) ([]PostRecord, error)

	// Close releases the store.
	Close() error
}
