package database

// HNSW parameters for the lookalike index. Rosters are small, so the graph
// favours recall over memory.
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the search candidate pool size.
	HNSWEfSearch = 64

	// HNSWSearchMultiplier is the factor to request more candidates from HNSW
	// so the queried identity itself can be dropped from the results.
	HNSWSearchMultiplier = 2
)
