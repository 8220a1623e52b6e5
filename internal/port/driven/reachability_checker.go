package driven

import "context"

// ReachabilityChecker defines the interface for sending probe requests to channel URLs.
// This is a driven port implemented by concrete adapters (e.g., an HTTP client).
type ReachabilityChecker interface {
	// Head sends a lightweight existence request. It reports whether the
	// server answered with a success status; an error means no response
	// was received at all (network failure, timeout, refused by policy).
	Head(ctx context.Context, url string) (bool, error)

	// Fetch sends a full request without credentials whose response is
	// opaque: the status and body are ignored and only completion matters.
	Fetch(ctx context.Context, url string) error
}
