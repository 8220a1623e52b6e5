package application

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/probe"
)

// mockSourceReader implements driven.SourceReader for testing.
type mockSourceReader struct {
	readFunc func(ctx context.Context, location string) (driven.Source, error)
}

func (m *mockSourceReader) Read(ctx context.Context, location string) (driven.Source, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, location)
	}
	return driven.Source{Name: location}, nil
}

// mockReachabilityChecker implements driven.ReachabilityChecker for testing.
type mockReachabilityChecker struct {
	headFunc  func(ctx context.Context, url string) (bool, error)
	fetchFunc func(ctx context.Context, url string) error
}

func (m *mockReachabilityChecker) Head(ctx context.Context, url string) (bool, error) {
	if m.headFunc != nil {
		return m.headFunc(ctx, url)
	}
	return true, nil
}

func (m *mockReachabilityChecker) Fetch(ctx context.Context, url string) error {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil
}

// mockProbeRepository implements driven.ProbeRepository for testing.
type mockProbeRepository struct {
	mu               sync.Mutex
	saved            []probe.Result
	saveFunc         func(ctx context.Context, r probe.Result) error
	findByURLFunc    func(ctx context.Context, url string) ([]probe.Result, error)
	deleteBeforeFunc func(ctx context.Context, before time.Time) error
}

func (m *mockProbeRepository) Save(ctx context.Context, r probe.Result) error {
	m.mu.Lock()
	m.saved = append(m.saved, r)
	m.mu.Unlock()
	if m.saveFunc != nil {
		return m.saveFunc(ctx, r)
	}
	return nil
}

func (m *mockProbeRepository) FindByURL(ctx context.Context, url string) ([]probe.Result, error) {
	if m.findByURLFunc != nil {
		return m.findByURLFunc(ctx, url)
	}
	return []probe.Result{}, nil
}

func (m *mockProbeRepository) DeleteBefore(ctx context.Context, before time.Time) error {
	if m.deleteBeforeFunc != nil {
		return m.deleteBeforeFunc(ctx, before)
	}
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
