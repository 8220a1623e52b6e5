package driven

import (
	"context"
	"time"

	"github.com/alorle/playlist-manager/internal/probe"
)

// ProbeRepository defines the interface for the reachability check log.
// Results are keyed by URL so the log survives channel re-imports.
type ProbeRepository interface {
	// Save persists a probe result.
	Save(ctx context.Context, r probe.Result) error

	// FindByURL retrieves all results for a URL, most recent first.
	FindByURL(ctx context.Context, url string) ([]probe.Result, error)

	// DeleteBefore removes all results older than the given time.
	DeleteBefore(ctx context.Context, before time.Time) error
}
