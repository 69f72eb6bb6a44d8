package dataset

import (
	"cmp"
	"slices"

	"github.com/hupe1980/kanjisim/model"
)

// visit states of the cycle walk.
const (
	unvisited uint8 = iota
	onPath
	done
)

// resolveVariants enforces the variant forest invariant in place.
//
// Dangling references are removed and flagged VARIANT_TARGET_MISSING. Cycles
// are broken by walking variant_of chains from every record in ascending ID
// order: the edge that reaches a record already on the current path is
// cleared and its owner flagged VARIANT_CYCLE. The walk depends only on IDs,
// so the same input always breaks the same edges.
func resolveVariants(records []*model.KanjiRecord) {
	byID := make(map[model.ID]*model.KanjiRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	lookup := func(literal string) (*model.KanjiRecord, bool) {
		id, err := model.IDFromLiteral(literal)
		if err != nil {
			return nil, false
		}
		rec, ok := byID[id]
		return rec, ok
	}

	ordered := slices.Clone(records)
	slices.SortFunc(ordered, func(a, b *model.KanjiRecord) int { return cmp.Compare(a.ID, b.ID) })

	for _, rec := range ordered {
		missing := false
		if rec.VariantOf != "" {
			if _, ok := lookup(rec.VariantOf); !ok {
				rec.VariantOf = ""
				missing = true
			}
		}
		if len(rec.Variants) > 0 {
			kept := rec.Variants[:0:0]
			for _, v := range rec.Variants {
				if _, ok := lookup(v); ok {
					kept = append(kept, v)
				} else {
					missing = true
				}
			}
			if len(kept) == 0 {
				kept = nil
			}
			rec.Variants = kept
		}
		if missing {
			addFlag(rec, model.FlagVariantTargetMissing)
		}
	}

	state := make(map[model.ID]uint8, len(records))
	var path []*model.KanjiRecord
	for _, start := range ordered {
		if state[start.ID] != unvisited {
			continue
		}
		path = path[:0]
		cur := start
		for {
			state[cur.ID] = onPath
			path = append(path, cur)
			if cur.VariantOf == "" {
				break
			}
			next, _ := lookup(cur.VariantOf)
			if s := state[next.ID]; s == onPath {
				cur.VariantOf = ""
				addFlag(cur, model.FlagVariantCycle)
				break
			} else if s == done {
				break
			}
			cur = next
		}
		for _, r := range path {
			state[r.ID] = done
		}
	}
}

// Root follows variant_of from rec to the root of its variant tree.
// Records are expected to satisfy the forest invariant established by Load.
func (s *Snapshot) Root(rec *model.KanjiRecord) *model.KanjiRecord {
	for steps := 0; rec.VariantOf != "" && steps <= len(s.Records); steps++ {
		next, ok := s.ByLiteral(rec.VariantOf)
		if !ok {
			break
		}
		rec = next
	}
	return rec
}

func addFlag(rec *model.KanjiRecord, f model.Flag) {
	rec.Flags = model.MergeFlags(rec.Flags, []model.Flag{f})
}
