package application

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/metrics"
	"github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/probe"
)

// ErrProbeInProgress is returned when a check is requested while another one runs.
var ErrProbeInProgress = errors.New("a reachability check is already running")

// probeTarget is the part of the workspace the prober reads from and writes to.
type probeTarget interface {
	selectedChannels() []channel.Channel
	applyResults(results []probe.Result)
}

// ProbeService checks the reachability of selected channels.
type ProbeService struct {
	target    probeTarget
	checker   driven.ReachabilityChecker
	probeRepo driven.ProbeRepository
	logger    *slog.Logger
	timeout   time.Duration
	batchSize int
	running   atomic.Bool
}

// NewProbeService creates a new ProbeService.
// probeRepo may be nil, in which case results are not logged.
func NewProbeService(
	workspace *WorkspaceService,
	checker driven.ReachabilityChecker,
	probeRepo driven.ProbeRepository,
	logger *slog.Logger,
	timeout time.Duration,
	batchSize int,
) *ProbeService {
	if timeout <= 0 {
		timeout = probe.DefaultProbeTimeout
	}
	if batchSize <= 0 {
		batchSize = probe.DefaultBatchSize
	}
	return &ProbeService{
		target:    workspace,
		checker:   checker,
		probeRepo: probeRepo,
		logger:    logger,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// CheckSelected probes every selected channel. secure tells whether the
// caller is served over an encrypted transport, in which case plain http
// URLs are not probed.
//
// Channels are probed in batches run concurrently; batches run one after the
// other and each batch's statuses are written to the store before the next
// starts. Individual failures never surface: they resolve to a status.
func (s *ProbeService) CheckSelected(ctx context.Context, secure bool) (probe.Summary, error) {
	selected := s.target.selectedChannels()
	if len(selected) == 0 {
		return probe.Summary{}, probe.ErrNoSelection
	}
	if !s.running.CompareAndSwap(false, true) {
		return probe.Summary{}, ErrProbeInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Info("starting reachability check",
		"channel_count", len(selected),
		"batch_size", s.batchSize,
		"secure", secure,
	)

	var summary probe.Summary
	for _, batch := range probe.Batches(selected, s.batchSize) {
		results := s.checkBatch(ctx, batch, secure)
		s.target.applyResults(results)

		for _, r := range results {
			summary.Add(r)
			metrics.RecordProbe(string(r.Status()), string(r.Method()))
			s.save(ctx, r)
		}
		summary.Batches++
	}
	summary.Elapsed = time.Since(start)

	s.logger.Info("reachability check completed",
		"online", summary.Online,
		"offline", summary.Offline,
		"unknown", summary.Unknown,
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}

// History returns the logged results for a URL, most recent first.
func (s *ProbeService) History(ctx context.Context, url string) ([]probe.Result, error) {
	if s.probeRepo == nil {
		return []probe.Result{}, nil
	}
	return s.probeRepo.FindByURL(ctx, url)
}

// Cleanup removes logged results older than maxAge.
func (s *ProbeService) Cleanup(ctx context.Context, maxAge time.Duration) error {
	if s.probeRepo == nil {
		return nil
	}
	return s.probeRepo.DeleteBefore(ctx, time.Now().Add(-maxAge))
}

// checkBatch probes one batch concurrently and waits for all of it to settle.
func (s *ProbeService) checkBatch(ctx context.Context, batch []channel.Channel, secure bool) []probe.Result {
	batchStart := time.Now()
	results := make([]probe.Result, len(batch))

	var g errgroup.Group
	for i, ch := range batch {
		g.Go(func() error {
			results[i] = probe.Classify(ctx, s.checker, ch, secure, s.timeout)
			s.logger.Debug("probed channel",
				"channel_id", ch.ID,
				"url", ch.URL,
				"status", results[i].Status(),
				"method", results[i].Method(),
			)
			return nil
		})
	}
	_ = g.Wait()

	metrics.ObserveProbeBatch(time.Since(batchStart).Seconds())
	return results
}

func (s *ProbeService) save(ctx context.Context, r probe.Result) {
	if s.probeRepo == nil {
		return
	}
	if err := s.probeRepo.Save(ctx, r); err != nil {
		s.logger.Warn("failed to log probe result", "url", r.URL(), "error", err)
	}
}
