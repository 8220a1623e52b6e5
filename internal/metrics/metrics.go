package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Channels tracks the number of channels in the working playlist
	Channels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "playlist_channels",
		Help: "Number of channels in the working playlist",
	})

	// HistoryDepth tracks how many undo steps are available
	HistoryDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "playlist_history_depth",
		Help: "Number of undo snapshots currently held",
	})

	// Imports tracks successful imports by kind (file, upload, url)
	Imports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playlist_imports_total",
		Help: "Total number of successful playlist imports",
	}, []string{"kind"})

	// ImportFailures tracks failed imports by kind
	ImportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playlist_import_failures_total",
		Help: "Total number of failed playlist imports",
	}, []string{"kind"})

	// ImportedChannels tracks how many channels imports produced
	ImportedChannels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playlist_imported_channels_total",
		Help: "Total number of channels parsed from imported playlists",
	})

	// Probes tracks probe outcomes by resulting status and method
	Probes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playlist_probes_total",
		Help: "Total number of reachability probes",
	}, []string{"status", "method"})

	// ProbeBatchDuration tracks how long each probe batch takes
	ProbeBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playlist_probe_batch_duration_seconds",
		Help:    "Duration of reachability probe batches",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})

	// Exports tracks exports by mode and format
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playlist_exports_total",
		Help: "Total number of playlist exports",
	}, []string{"mode", "format"})
)

// SetChannels sets the number of channels in the working playlist
func SetChannels(count int) {
	Channels.Set(float64(count))
}

// SetHistoryDepth sets the number of available undo steps
func SetHistoryDepth(depth int) {
	HistoryDepth.Set(float64(depth))
}

// RecordImport increments the import counter and adds the parsed channel count
func RecordImport(kind string, channels int) {
	Imports.WithLabelValues(kind).Inc()
	ImportedChannels.Add(float64(channels))
}

// RecordImportFailure increments the import failure counter for a kind
func RecordImportFailure(kind string) {
	ImportFailures.WithLabelValues(kind).Inc()
}

// RecordProbe increments the probe counter for a status and method
func RecordProbe(status, method string) {
	Probes.WithLabelValues(status, method).Inc()
}

// ObserveProbeBatch records the duration of one probe batch in seconds
func ObserveProbeBatch(seconds float64) {
	ProbeBatchDuration.Observe(seconds)
}

// RecordExport increments the export counter for a mode and format
func RecordExport(mode, format string) {
	Exports.WithLabelValues(mode, format).Inc()
}
