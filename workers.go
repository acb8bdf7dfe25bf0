package dealdoc

import "runtime"

// Worker sizing for batch generation.
const (
	MinWorkers = 1

	// MaxWorkers caps in-flight archives; each holds a full document in memory.
	MaxWorkers = 16
)

// ResolveWorkers returns the number of concurrent generations to run.
// An explicit positive value wins; otherwise GOMAXPROCS is used, which
// automaxprocs adjusts to container CPU quotas.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxWorkers)
}
