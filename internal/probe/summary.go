package probe

import (
	"time"

	"github.com/alorle/playlist-manager/internal/channel"
)

// Summary aggregates the results of one probing run.
type Summary struct {
	Total     int           `json:"total"`
	Online    int           `json:"online"`
	Offline   int           `json:"offline"`
	Unknown   int           `json:"unknown"`
	Skipped   int           `json:"skipped"`
	Fallbacks int           `json:"fallbacks"`
	Batches   int           `json:"batches"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Add accounts for one result.
func (s *Summary) Add(r Result) {
	s.Total++
	switch r.Status() {
	case channel.StatusOnline:
		s.Online++
	case channel.StatusOffline:
		s.Offline++
	default:
		s.Unknown++
	}
	switch r.Method() {
	case MethodSkipped:
		s.Skipped++
	case MethodFallback:
		s.Fallbacks++
	}
}

// OnlineRatio returns the share of probed channels found online.
// Skipped channels are not counted as probed.
func (s Summary) OnlineRatio() float64 {
	probed := s.Total - s.Skipped
	if probed <= 0 {
		return 0
	}
	return float64(s.Online) / float64(probed)
}
