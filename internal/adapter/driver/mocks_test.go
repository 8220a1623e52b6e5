package driver

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alorle/playlist-manager/internal/application"
	"github.com/alorle/playlist-manager/internal/port/driven"
)

// mockSourceReader implements driven.SourceReader for testing.
type mockSourceReader struct {
	readFunc func(ctx context.Context, location string) (driven.Source, error)
}

func (m *mockSourceReader) Read(ctx context.Context, location string) (driven.Source, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, location)
	}
	return driven.Source{}, driven.ErrSourceUnavailable
}

// mockReachabilityChecker implements driven.ReachabilityChecker for testing.
type mockReachabilityChecker struct {
	headFunc func(ctx context.Context, url string) (bool, error)
}

func (m *mockReachabilityChecker) Head(ctx context.Context, url string) (bool, error) {
	if m.headFunc != nil {
		return m.headFunc(ctx, url)
	}
	return true, nil
}

func (m *mockReachabilityChecker) Fetch(ctx context.Context, url string) error {
	return nil
}

// mockSourceCache implements driven.SourceCache for testing.
type mockSourceCache struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockSourceCache) Get(ctx context.Context, url string) (driven.CachedSource, error) {
	return driven.CachedSource{}, driven.ErrCacheMiss
}

func (m *mockSourceCache) Set(ctx context.Context, url string, content string) error {
	return nil
}

func (m *mockSourceCache) Delete(ctx context.Context, url string) error {
	return nil
}

func (m *mockSourceCache) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const testPlaylist = "#EXTM3U\n" +
	"#EXTINF:-1 group-title=\"Sports\" tvg-logo=\"http://logo/espn.png\",ESPN\nhttp://a/espn\n" +
	"#EXTINF:-1 group-title=\"News\",CNN\nhttp://a/cnn\n" +
	"#EXTINF:-1 group-title=\"Sports\",ESPN Mirror\nhttp://a/espn\n"

// newTestWorkspace returns a workspace holding testPlaylist imported from sports.m3u.
func newTestWorkspace(t *testing.T, remote driven.SourceReader) *application.WorkspaceService {
	t.Helper()
	svc := application.NewWorkspaceService(nil, remote, 0, newTestLogger())
	if _, err := svc.ImportContent(driven.Source{Name: "sports.m3u", Content: testPlaylist}); err != nil {
		t.Fatalf("ImportContent() error = %v", err)
	}
	return svc
}

func idByName(t *testing.T, svc *application.WorkspaceService, name string) string {
	t.Helper()
	for _, ch := range svc.View().Channels {
		if ch.Name == name {
			return ch.ID
		}
	}
	t.Fatalf("channel %q not found", name)
	return ""
}

func names(resp playlistResponse) string {
	out := make([]string, len(resp.Channels))
	for i, ch := range resp.Channels {
		out[i] = ch.Name
	}
	return strings.Join(out, ",")
}
