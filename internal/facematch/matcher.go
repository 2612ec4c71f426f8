package facematch

import "math"

// DefaultTolerance is the largest embedding distance still treated as the same person.
const DefaultTolerance = 0.55

// Matcher resolves detections to the nearest enrolled candidate.
type Matcher struct {
	Tolerance float64
}

// NewMatcher creates a matcher, falling back to DefaultTolerance for non-positive values.
func NewMatcher(tolerance float64) Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return Matcher{Tolerance: tolerance}
}

// Nearest returns the index and distance of the closest candidate.
// Ties go to the lowest index. Returns -1 if there are no comparable candidates.
func Nearest(candidates []Candidate, embedding []float64) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i := range candidates {
		d := EuclideanDistance(candidates[i].Embedding, embedding)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Match resolves a single detection. The decision uses the exact distance,
// the reported distance is rounded.
func (m Matcher) Match(candidates []Candidate, d Detection) Result {
	res := Result{Name: UnknownName, Box: d.Box}

	idx, dist := Nearest(candidates, d.Embedding)
	if idx < 0 {
		return res
	}

	rounded := RoundDistance(dist)
	res.Distance = &rounded

	if dist < m.Tolerance {
		res.IdentityID = candidates[idx].ID
		res.Name = candidates[idx].Name
	}
	return res
}

// MatchFrame resolves every detection of a frame independently.
// Two detections may resolve to the same identity; no deduplication is done.
func (m Matcher) MatchFrame(candidates []Candidate, detections []Detection) []Result {
	results := make([]Result, 0, len(detections))
	for _, d := range detections {
		results = append(results, m.Match(candidates, d))
	}
	return results
}
