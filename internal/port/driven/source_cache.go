package driven

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when no cached copy exists for a key.
var ErrCacheMiss = errors.New("source not cached")

// CachedSource is a previously fetched playlist body.
type CachedSource struct {
	Content   string
	FetchedAt time.Time
}

// SourceCache defines the interface for keeping the last good copy of remote playlists.
// It caches upstream text only; the edited playlist is never stored.
type SourceCache interface {
	// Get returns the cached copy for url or ErrCacheMiss.
	Get(ctx context.Context, url string) (CachedSource, error)

	// Set stores content as the latest copy for url.
	Set(ctx context.Context, url string, content string) error

	// Delete removes the cached copy for url. Deleting a missing entry is not an error.
	Delete(ctx context.Context, url string) error

	// Ping checks that the underlying storage is accessible.
	Ping(ctx context.Context) error
}
