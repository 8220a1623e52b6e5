package probe

import (
	"context"
	"time"

	"github.com/alorle/playlist-manager/internal/channel"
)

const (
	// DefaultBatchSize is the number of channels probed concurrently.
	DefaultBatchSize = 5
	// DefaultProbeTimeout bounds each individual request of a probe.
	DefaultProbeTimeout = 10 * time.Second
)

// Checker sends the two kinds of request a probe may need.
type Checker interface {
	// Head sends a lightweight existence request and reports whether the
	// server answered with a success status. An error means no response.
	Head(ctx context.Context, url string) (bool, error)
	// Fetch sends a full request whose response cannot be inspected.
	// Only completion is observable.
	Fetch(ctx context.Context, url string) error
}

// Classify determines the reachability of one channel.
// Each request gets its own timeout; a failure of the head request that
// produced no response falls through to the full request.
func Classify(ctx context.Context, checker Checker, ch channel.Channel, secure bool, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	start := time.Now()

	if !Precheck(ch.URL, secure) {
		return Result{channelID: ch.ID, url: ch.URL, status: channel.StatusUnknown, method: MethodSkipped, checkedAt: start}
	}

	headCtx, cancel := context.WithTimeout(ctx, timeout)
	ok, err := checker.Head(headCtx, ch.URL)
	cancel()
	if err == nil {
		return Result{
			channelID: ch.ID,
			url:       ch.URL,
			status:    HeadStatus(ok),
			method:    MethodHead,
			checkedAt: start,
			duration:  time.Since(start),
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fetchErr := checker.Fetch(fetchCtx, ch.URL)

	r := Result{
		channelID: ch.ID,
		url:       ch.URL,
		status:    FallbackStatus(fetchErr),
		method:    MethodFallback,
		checkedAt: start,
		duration:  time.Since(start),
	}
	if fetchErr != nil {
		r.err = fetchErr.Error()
	}
	return r
}

// Batches splits channels into consecutive groups of at most size.
func Batches(channels []channel.Channel, size int) [][]channel.Channel {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]channel.Channel
	for start := 0; start < len(channels); start += size {
		end := min(start+size, len(channels))
		out = append(out, channels[start:end])
	}
	return out
}
