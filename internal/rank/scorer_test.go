package rank

import (
	"testing"

	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
)

func candidates(ids ...string) []entry.Entry {
	out := make([]entry.Entry, len(ids))
	for i, id := range ids {
		out[i] = entry.Entry{ID: id, Label: id, Kind: entry.KindResolved}
	}
	return out
}

func choice(id string, t int64, w float32) history.Record {
	return history.Record{EntryID: id, Time: t, Weight: w}
}

func TestApply_EmptyHistoryAllZero(t *testing.T) {
	scored := DefaultScorer().Apply(candidates("a", "b", "c"), nil)

	for _, e := range scored {
		if e.Weight != 0 {
			t.Fatalf("entry %s has weight %v, want 0", e.ID, e.Weight)
		}
	}
}

func TestApply_SingleRecord(t *testing.T) {
	scored := DefaultScorer().Apply(candidates("a", "b"), []history.Record{
		choice("a", 1, 1.0),
	})

	if scored[0].Weight != 1.0 {
		t.Errorf("a scored %v, want 1.0", scored[0].Weight)
	}
	if scored[1].Weight != 0 {
		t.Errorf("b scored %v, want 0", scored[1].Weight)
	}
}

func TestApply_DecayAccumulation(t *testing.T) {
	// Newest record contributes at full weight, the older repeat decayed once.
	scored := DefaultScorer().Apply(candidates("a"), []history.Record{
		choice("a", 1, 1.0),
		choice("a", 2, 1.0),
	})

	want := float32(1.0) + 1.0*DecayFactor
	if scored[0].Weight != want {
		t.Fatalf("a scored %v, want %v", scored[0].Weight, want)
	}
	if scored[0].Weight <= 1.0 || scored[0].Weight >= 2.0 {
		t.Fatalf("decayed sum %v must lie strictly between 1.0 and 2.0", scored[0].Weight)
	}
}

func TestApply_UnmatchedRecordsDoNotAdvanceDecay(t *testing.T) {
	// A record for an absent entry sits between two matches. The older match
	// must still be decayed exactly once.
	scored := DefaultScorer().Apply(candidates("a"), []history.Record{
		choice("a", 1, 1.0),
		choice("gone", 2, 1.0),
		choice("a", 3, 1.0),
	})

	want := float32(1.0) + 1.0*DecayFactor
	if scored[0].Weight != want {
		t.Fatalf("a scored %v, want %v", scored[0].Weight, want)
	}
}

func TestApply_RecordWeightScales(t *testing.T) {
	scored := DefaultScorer().Apply(candidates("a", "b"), []history.Record{
		choice("b", 1, 1.0),
		choice("a", 2, 13.0),
	})

	if scored[0].Weight != 13.0 {
		t.Errorf("a scored %v, want 13.0", scored[0].Weight)
	}
	want := 1.0 * DecayFactor
	if scored[1].Weight != want {
		t.Errorf("b scored %v, want %v", scored[1].Weight, want)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := candidates("a")
	in[0].Weight = 7.5

	scored := DefaultScorer().Apply(in, []history.Record{choice("a", 1, 1.0)})

	if in[0].Weight != 7.5 {
		t.Fatalf("input weight changed to %v", in[0].Weight)
	}
	if scored[0].Weight != 1.0 {
		t.Fatalf("stale weight leaked into score: %v, want 1.0", scored[0].Weight)
	}
}

func TestApply_Deterministic(t *testing.T) {
	entries := candidates("a", "b", "c")
	records := []history.Record{
		choice("b", 1, 1.0),
		choice("c", 2, 1.0),
		choice("b", 3, 1.0),
	}

	first := DefaultScorer().Apply(entries, records)
	second := DefaultScorer().Apply(entries, records)

	for i := range first {
		if first[i].Weight != second[i].Weight {
			t.Fatalf("entry %s scored %v then %v", first[i].ID, first[i].Weight, second[i].Weight)
		}
	}
}
