package probe

import (
	"strings"
	"time"

	"github.com/alorle/playlist-manager/internal/channel"
)

// Method records how a channel's status was decided.
type Method string

const (
	// MethodSkipped means no request was sent (mixed content or non-web scheme).
	MethodSkipped Method = "skipped"
	// MethodHead means the lightweight existence probe answered.
	MethodHead Method = "head"
	// MethodFallback means the head probe failed and the opaque full probe ran.
	MethodFallback Method = "fallback"
)

// Result is the outcome of probing one channel.
// It is an immutable value object.
type Result struct {
	channelID string
	url       string
	status    channel.Status
	method    Method
	checkedAt time.Time
	duration  time.Duration
	err       string
}

// NewResult creates a probe result with validation.
func NewResult(channelID, url string, status channel.Status, method Method, checkedAt time.Time, duration time.Duration, errMessage string) (Result, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return Result{}, ErrEmptyChannel
	}
	switch method {
	case MethodSkipped, MethodHead, MethodFallback:
	default:
		return Result{}, ErrInvalidMethod
	}
	return Result{
		channelID: channelID,
		url:       url,
		status:    status,
		method:    method,
		checkedAt: checkedAt,
		duration:  duration,
		err:       errMessage,
	}, nil
}

func (r Result) ChannelID() string       { return r.channelID }
func (r Result) URL() string             { return r.url }
func (r Result) Status() channel.Status  { return r.status }
func (r Result) Method() Method          { return r.method }
func (r Result) CheckedAt() time.Time    { return r.checkedAt }
func (r Result) Duration() time.Duration { return r.duration }
func (r Result) ErrorMessage() string    { return r.err }

// Precheck decides whether a URL can be probed at all.
// When secure is true the probing context is served over an encrypted
// transport, so plain http URLs would be blocked as mixed content; those, and
// any URL without a web scheme, resolve to unknown without a request.
// Returns false when no probe should be attempted.
func Precheck(rawURL string, secure bool) bool {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if secure && strings.HasPrefix(lower, "http:") {
		return false
	}
	return strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:")
}

// HeadStatus maps the answer of the lightweight probe to a status.
func HeadStatus(ok bool) channel.Status {
	if ok {
		return channel.StatusOnline
	}
	return channel.StatusOffline
}

// FallbackStatus maps the outcome of the opaque probe to a status: completing
// at all is the only evidence available.
func FallbackStatus(err error) channel.Status {
	if err != nil {
		return channel.StatusOffline
	}
	return channel.StatusOnline
}
