package searcher

import (
	"cmp"
	"slices"
)

// Sort orders candidates by descending score. Candidates whose scores lie
// within epsilon of each other are ordered by ascending ID.
//
// Ties are resolved in runs: after an exact (score desc, ID asc) sort, each
// run starts at the best remaining candidate and takes every following
// candidate scoring within epsilon of it; the run is then ordered by ID.
// The result depends only on the set of (ID, score) pairs, never on input
// order.
func Sort(cands []Candidate, epsilon float32) {
	slices.SortFunc(cands, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if epsilon <= 0 {
		return
	}
	for start := 0; start < len(cands); {
		end := start + 1
		for end < len(cands) && cands[start].Score-cands[end].Score <= epsilon {
			end++
		}
		if end-start > 1 {
			slices.SortStableFunc(cands[start:end], func(a, b Candidate) int {
				return cmp.Compare(a.ID, b.ID)
			})
		}
		start = end
	}
}
