package driven

import (
	port "github.com/alorle/playlist-manager/internal/port/driven"
	"github.com/alorle/playlist-manager/internal/probe"
)

// Compile-time check that ReachabilityHTTPChecker implements ReachabilityChecker interface
var _ port.ReachabilityChecker = (*ReachabilityHTTPChecker)(nil)

// Compile-time check that ReachabilityHTTPChecker can drive probe.Classify
var _ probe.Checker = (*ReachabilityHTTPChecker)(nil)

// Compile-time check that FileSource and HTTPSource implement SourceReader interface
var (
	_ port.SourceReader = (*FileSource)(nil)
	_ port.SourceReader = (*HTTPSource)(nil)
)

// Compile-time check that SourceCacheBoltDB implements SourceCache interface
var _ port.SourceCache = (*SourceCacheBoltDB)(nil)

// Compile-time check that ProbeBoltDBRepository implements ProbeRepository interface
var _ port.ProbeRepository = (*ProbeBoltDBRepository)(nil)
