package rank

import (
	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
)

// #region scorer

// DecayFactor is the per-match multiplier applied while walking the history
// from newest to oldest.
const DecayFactor float32 = 0.95

// Scorer turns a choice history into recency-weighted entry scores.
type Scorer struct {
	decay float32
}

// DefaultScorer returns a scorer with the standard decay factor.
func DefaultScorer() Scorer {
	return Scorer{decay: DecayFactor}
}

// NewScorer returns a scorer with a custom decay factor.
func NewScorer(decay float32) Scorer {
	return Scorer{decay: decay}
}

// #endregion scorer

// #region apply

// Apply returns fresh copies of entries with weights recomputed from
// records. The input slice is never mutated. Records are walked newest
// (last) to oldest with a running multiplier starting at 1.0; a record
// matching a present entry adds record.Weight times the multiplier to that
// entry, and only a match advances the decay. Entries with no matching
// record end at weight 0. Duplicate IDs among entries are the caller's
// problem; the first occurrence collects all matches.
func (s Scorer) Apply(entries []entry.Entry, records []history.Record) []entry.Entry {
	scored := entry.Clone(entries)
	index := make(map[string]int, len(scored))
	for i := range scored {
		scored[i].Weight = 0
		if _, ok := index[scored[i].ID]; !ok {
			index[scored[i].ID] = i
		}
	}

	multiplier := float32(1.0)
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		j, ok := index[rec.EntryID]
		if !ok {
			continue
		}
		scored[j].Weight += rec.Weight * multiplier
		multiplier *= s.decay
	}
	return scored
}

// #endregion apply
