package probe

import (
	"errors"
	"testing"
	"time"

	"github.com/alorle/playlist-manager/internal/channel"
)

func TestNewResult(t *testing.T) {
	tests := []struct {
		name      string
		channelID string
		method    Method
		wantError error
	}{
		{name: "valid head result", channelID: "abc", method: MethodHead},
		{name: "valid skipped result", channelID: "abc", method: MethodSkipped},
		{name: "empty channel id", channelID: "  ", method: MethodHead, wantError: ErrEmptyChannel},
		{name: "invalid method", channelID: "abc", method: Method("ping"), wantError: ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResult(tt.channelID, "http://x", channel.StatusOnline, tt.method, time.Now(), time.Second, "")
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("expected error %v, got %v", tt.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ChannelID() != tt.channelID || r.Method() != tt.method || r.Duration() != time.Second {
				t.Errorf("unexpected result %+v", r)
			}
		})
	}
}

func TestPrecheck(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		secure bool
		want   bool
	}{
		{name: "http in insecure context", url: "http://example.com/live", want: true},
		{name: "https in insecure context", url: "https://example.com/live", want: true},
		{name: "http in secure context is mixed content", url: "http://example.com/live", secure: true, want: false},
		{name: "upper-case scheme in secure context", url: "HTTP://example.com/live", secure: true, want: false},
		{name: "https in secure context", url: "https://example.com/live", secure: true, want: true},
		{name: "rtmp is not a web scheme", url: "rtmp://example.com/live", want: false},
		{name: "acestream is not a web scheme", url: "acestream://abcdef", secure: true, want: false},
		{name: "empty", url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Precheck(tt.url, tt.secure); got != tt.want {
				t.Errorf("Precheck(%q, %v) = %v, want %v", tt.url, tt.secure, got, tt.want)
			}
		})
	}
}

func TestStatusMapping(t *testing.T) {
	if HeadStatus(true) != channel.StatusOnline || HeadStatus(false) != channel.StatusOffline {
		t.Error("HeadStatus mapping is wrong")
	}
	if FallbackStatus(nil) != channel.StatusOnline || FallbackStatus(errors.New("x")) != channel.StatusOffline {
		t.Error("FallbackStatus mapping is wrong")
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	for _, r := range []Result{
		mustResult(t, "a", channel.StatusOnline, MethodHead),
		mustResult(t, "b", channel.StatusOffline, MethodHead),
		mustResult(t, "c", channel.StatusOnline, MethodFallback),
		mustResult(t, "d", channel.StatusUnknown, MethodSkipped),
	} {
		s.Add(r)
	}

	if s.Total != 4 || s.Online != 2 || s.Offline != 1 || s.Unknown != 1 {
		t.Errorf("Summary counts = %+v", s)
	}
	if s.Skipped != 1 || s.Fallbacks != 1 {
		t.Errorf("Summary methods = %+v", s)
	}
	if got := s.OnlineRatio(); got != 2.0/3.0 {
		t.Errorf("OnlineRatio() = %f, want %f", got, 2.0/3.0)
	}
	if (Summary{}).OnlineRatio() != 0 {
		t.Error("OnlineRatio() of empty summary should be 0")
	}
}

func mustResult(t *testing.T, id string, status channel.Status, method Method) Result {
	t.Helper()
	r, err := NewResult(id, "http://"+id, status, method, time.Now(), 0, "")
	if err != nil {
		t.Fatalf("NewResult() unexpected error = %v", err)
	}
	return r
}
