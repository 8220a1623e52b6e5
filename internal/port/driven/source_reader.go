package driven

import (
	"context"
	"errors"
)

// ErrSourceUnavailable is returned when a playlist source cannot be read.
var ErrSourceUnavailable = errors.New("playlist source unavailable")

// Source is the raw text of one playlist together with its display name.
type Source struct {
	// Name identifies where the channels came from (file name or last URL segment).
	Name string
	// Content is the playlist text.
	Content string
	// Stale is true when the content was served from cache because the
	// upstream could not be reached.
	Stale bool
}

// SourceReader defines the interface for reading playlist text from a location.
// This is a driven port implemented by concrete adapters (e.g., file system, HTTP).
type SourceReader interface {
	// Read loads the playlist at location. Failures wrap ErrSourceUnavailable.
	Read(ctx context.Context, location string) (Source, error)
}
