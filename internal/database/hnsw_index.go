package database

import (
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// IndexEntry is one enrolled identity added to the lookalike index.
type IndexEntry struct {
	ID        string
	Name      string
	Embedding []float64
}

// Lookalike is an enrolled identity close to another one in embedding space.
type Lookalike struct {
	ID       string
	Name     string
	Distance float64
}

// IdentityIndex wraps an HNSW graph over enrolled embeddings. It answers
// "which students look like this one" without scanning the whole roster.
// The frame matcher does not use it: matching needs an exact argmin.
type IdentityIndex struct {
	graph   *hnsw.Graph[string]
	entries map[string]IndexEntry
	mu      sync.RWMutex
}

// NewIdentityIndex creates a new empty index.
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		entries: make(map[string]IndexEntry),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors)
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build replaces the index content with the given entries.
// Entries without an embedding are skipped.
func (x *IdentityIndex) Build(entries []IndexEntry) {
	g := newGraph()
	byID := make(map[string]IndexEntry, len(entries))

	for _, e := range entries {
		if len(e.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(e.ID, toFloat32(e.Embedding)))
		byID[e.ID] = e
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.graph = g
	x.entries = byID
}

// Count returns the number of indexed identities.
func (x *IdentityIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Lookalikes returns up to limit identities closest to the given one, nearest first.
// The identity itself is excluded. Returns ErrNotFound for an unknown ID.
func (x *IdentityIndex) Lookalikes(id string, limit int) ([]Lookalike, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	self, ok := x.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if limit <= 0 || len(x.entries) < 2 {
		return []Lookalike{}, nil
	}

	neighbors := x.graph.Search(toFloat32(self.Embedding), (limit+1)*HNSWSearchMultiplier)

	result := make([]Lookalike, 0, limit)
	for _, n := range neighbors {
		if n.Key == id {
			continue
		}
		e, ok := x.entries[n.Key]
		if !ok {
			continue
		}
		result = append(result, Lookalike{
			ID:   e.ID,
			Name: e.Name,
			// Exact float64 distance, the graph only ranks candidates.
			Distance: facematch.EuclideanDistance(self.Embedding, e.Embedding),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
