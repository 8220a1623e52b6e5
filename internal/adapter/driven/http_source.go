package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alorle/playlist-manager/internal/m3u"
	"github.com/alorle/playlist-manager/internal/port/driven"
)

const (
	// DefaultFetchTimeout bounds a single playlist download.
	DefaultFetchTimeout = 30 * time.Second

	// maxPlaylistSize caps the number of bytes read from an upstream playlist.
	maxPlaylistSize = 64 << 20
)

// ErrPlaylistTooLarge is returned when an upstream body exceeds the size cap.
var ErrPlaylistTooLarge = errors.New("playlist too large")

// HTTPSource implements the SourceReader port by downloading playlists.
// Successful downloads are stored in the cache. A failed download is an
// error unless staleFallback is set, in which case the last cached copy is
// served as stale.
type HTTPSource struct {
	httpClient    *http.Client
	cache         driven.SourceCache
	staleFallback bool
	userAgent     string
	maxSize       int64
	logger        *slog.Logger
}

// NewHTTPSource creates a new HTTP-based source reader.
// cache may be nil, in which case nothing is stored and failures are
// returned as-is regardless of staleFallback.
func NewHTTPSource(timeout time.Duration, cache driven.SourceCache, staleFallback bool, userAgent string, logger *slog.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPSource{
		httpClient:    &http.Client{Timeout: timeout},
		cache:         cache,
		staleFallback: staleFallback,
		userAgent:     userAgent,
		maxSize:       maxPlaylistSize,
		logger:        logger,
	}
}

// Read downloads the playlist at url.
func (s *HTTPSource) Read(ctx context.Context, url string) (driven.Source, error) {
	name := m3u.NameFromURL(url)

	content, fetchErr := s.fetch(ctx, url)
	if fetchErr == nil {
		s.logger.Debug("fetched playlist", "url", url, "bytes", len(content))
		if s.cache != nil {
			if err := s.cache.Set(ctx, url, content); err != nil {
				s.logger.Warn("failed to update source cache", "url", url, "error", err)
			}
		}
		return driven.Source{Name: name, Content: content}, nil
	}

	s.logger.Warn("failed to fetch playlist", "url", url, "error", fetchErr)

	if !s.staleFallback || s.cache == nil || ctx.Err() != nil {
		return driven.Source{}, fmt.Errorf("%w: %w", driven.ErrSourceUnavailable, fetchErr)
	}

	cached, err := s.cache.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, driven.ErrCacheMiss) {
			s.logger.Error("failed to read source cache", "url", url, "error", err)
		}
		return driven.Source{}, fmt.Errorf("%w: upstream fetch failed and no cache available: %w",
			driven.ErrSourceUnavailable, fetchErr)
	}

	s.logger.Info("serving stale playlist from cache",
		"url", url,
		"fetched_at", cached.FetchedAt.Format(time.RFC3339),
	)
	return driven.Source{Name: name, Content: cached.Content, Stale: true}, nil
}

func (s *HTTPSource) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Debug("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrPlaylistTooLarge, s.maxSize)
	}
	return string(data), nil
}
