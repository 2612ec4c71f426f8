package attendance

import (
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/facematch"
)

// SkippedIdentity is a stored student that could not be loaded into a session.
type SkippedIdentity struct {
	StudentID string
	Err       error
}

// Store is the immutable set of enrolled embeddings a session matches against.
type Store struct {
	candidates []facematch.Candidate
	byID       map[string]int
	skipped    []SkippedIdentity
}

// NewStore decodes the stored identities in order. An identity whose blob is not
// exactly dim float64 values is skipped and reported through Skipped; the rest still load.
func NewStore(identities []database.StoredIdentity, dim int) *Store {
	s := &Store{
		candidates: make([]facematch.Candidate, 0, len(identities)),
		byID:       make(map[string]int, len(identities)),
	}

	for _, identity := range identities {
		if _, dup := s.byID[identity.StudentID]; dup {
			continue
		}
		emb, err := database.DecodeEmbedding(identity.Encoding, dim)
		if err != nil {
			s.skipped = append(s.skipped, SkippedIdentity{
				StudentID: identity.StudentID,
				Err:       fmt.Errorf("%w: student %s: %v", ErrDataIntegrity, identity.StudentID, err),
			})
			continue
		}
		s.byID[identity.StudentID] = len(s.candidates)
		s.candidates = append(s.candidates, facematch.Candidate{
			ID:        identity.StudentID,
			Name:      identity.StudentName,
			Embedding: emb,
		})
	}
	return s
}

// Snapshot returns the candidates in load order. Callers must not modify the slice.
func (s *Store) Snapshot() []facematch.Candidate {
	return s.candidates
}

// Len returns the number of loaded identities.
func (s *Store) Len() int {
	return len(s.candidates)
}

// Lookup returns the loaded candidate with the given ID.
func (s *Store) Lookup(id string) (facematch.Candidate, bool) {
	i, ok := s.byID[id]
	if !ok {
		return facematch.Candidate{}, false
	}
	return s.candidates[i], true
}

// Skipped returns the identities that failed to load.
func (s *Store) Skipped() []SkippedIdentity {
	return s.skipped
}
