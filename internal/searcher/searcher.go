package searcher

import (
	"sync"

	"github.com/hupe1980/kanjisim/distance"
	"github.com/hupe1980/kanjisim/model"
)

// Candidate is one scored record of a scan.
type Candidate struct {
	ID       model.ID
	Score    float32
	Distance float32
	Terms    distance.Terms
}

// Searcher is a reusable execution context for one scan.
//
// Searcher is NOT thread-safe. It is owned by a single goroutine for the
// duration of a query.
type Searcher struct {
	// Candidates collects every eligible candidate of the scan.
	Candidates []Candidate

	// OpsPerformed counts distance evaluations.
	OpsPerformed int
}

var searcherPool = sync.Pool{
	New: func() any {
		return NewSearcher(1024)
	},
}

// NewSearcher creates a searcher with the given initial candidate capacity.
func NewSearcher(capacity int) *Searcher {
	return &Searcher{Candidates: make([]Candidate, 0, capacity)}
}

// Get returns a Searcher from the pool.
func Get() *Searcher {
	s := searcherPool.Get().(*Searcher)
	s.Reset()
	return s
}

// Put returns a Searcher to the pool.
func Put(s *Searcher) {
	searcherPool.Put(s)
}

// Reset clears the searcher state for reuse.
func (s *Searcher) Reset() {
	s.Candidates = s.Candidates[:0]
	s.OpsPerformed = 0
}

// Add appends a candidate.
func (s *Searcher) Add(c Candidate) {
	s.Candidates = append(s.Candidates, c)
	s.OpsPerformed++
}

// TopK orders the candidates and returns a copy of the first k.
// The returned slice does not alias the searcher's buffer.
func (s *Searcher) TopK(k int, epsilon float32) []Candidate {
	Sort(s.Candidates, epsilon)
	k = min(k, len(s.Candidates))
	out := make([]Candidate, k)
	copy(out, s.Candidates[:k])
	return out
}
