package rank

import (
	"testing"

	"github.com/danielpatrickdp/choicerank/internal/entry"
)

const (
	smallWeight       float32 = 10
	mediumWeight      float32 = 50
	largeWeight       float32 = 100
	veryLargeWeight   float32 = 1000
	immenseWeight     float32 = 10000
	veryImmenseWeight float32 = 100000000
)

func weighted(id string, w float32) entry.Entry {
	return entry.Entry{ID: id, Label: id, Weight: w}
}

func normals() []entry.Entry {
	return []entry.Entry{
		weighted("n-small", smallWeight),
		weighted("n-medium", mediumWeight),
		weighted("n-large", largeWeight),
		weighted("n-immense", immenseWeight),
	}
}

func specials() []entry.Entry {
	return []entry.Entry{
		weighted("s-small", smallWeight),
		weighted("s-medium", mediumWeight),
		weighted("s-large", largeWeight),
	}
}

func TestLargestWeight(t *testing.T) {
	if got := LargestWeight(normals()); got != immenseWeight {
		t.Fatalf("largest weight %v, want %v", got, immenseWeight)
	}
	if got := LargestWeight(nil); got != 0 {
		t.Fatalf("largest weight of nothing %v, want 0", got)
	}
}

func TestCompare_TwoNormalsByWeightDescending(t *testing.T) {
	o := NewOrdering(LargestWeight(normals()), specials())

	if got := o.Compare(weighted("n-large", largeWeight), weighted("n-small", smallWeight)); got >= 0 {
		t.Errorf("heavier normal should sort first, got %d", got)
	}
	if got := o.Compare(weighted("n-small", smallWeight), weighted("n-large", largeWeight)); got <= 0 {
		t.Errorf("lighter normal should sort last, got %d", got)
	}
	if got := o.Compare(weighted("n-a", mediumWeight), weighted("n-b", mediumWeight)); got != 0 {
		t.Errorf("equal weights should compare as ties, got %d", got)
	}
}

func TestCompare_SpecialBeatsNonHighestNormal(t *testing.T) {
	o := NewOrdering(LargestWeight(normals()), specials())

	// n-very-large outweighs every special but is not the highest normal.
	if got := o.Compare(weighted("n-very-large", veryLargeWeight), weighted("s-large", largeWeight)); got <= 0 {
		t.Errorf("special should sort above a non-highest normal, got %d", got)
	}
	if got := o.Compare(weighted("s-large", largeWeight), weighted("n-very-large", veryLargeWeight)); got >= 0 {
		t.Errorf("special should sort above a non-highest normal, got %d", got)
	}
}

func TestCompare_HighestNormalBeatsSpecialsWhenStrictlyHeavier(t *testing.T) {
	o := NewOrdering(LargestWeight(normals()), specials())

	if got := o.Compare(weighted("n-immense", immenseWeight), weighted("s-large", largeWeight)); got >= 0 {
		t.Errorf("highest normal above all specials should sort first, got %d", got)
	}
	if got := o.Compare(weighted("s-large", largeWeight), weighted("n-immense", immenseWeight)); got <= 0 {
		t.Errorf("highest normal above all specials should sort first, got %d", got)
	}
}

func TestCompare_HighestNormalLosesWhenNotHeavierThanAllSpecials(t *testing.T) {
	withImmense := append(specials(), weighted("s-very-immense", veryImmenseWeight))
	o := NewOrdering(LargestWeight(normals()), withImmense)

	if got := o.Compare(weighted("n-immense", immenseWeight), weighted("s-small", smallWeight)); got <= 0 {
		t.Errorf("special should win when a heavier special exists, got %d", got)
	}
	if got := o.Compare(weighted("s-large", largeWeight), weighted("n-immense", immenseWeight)); got >= 0 {
		t.Errorf("special should win when a heavier special exists, got %d", got)
	}
}

func TestCompare_EqualTopWeightsKeepSpecialOnTop(t *testing.T) {
	// Strictly greater is required; a tie at the top leaves the special first.
	o := NewOrdering(largeWeight, []entry.Entry{weighted("s-large", largeWeight)})

	if got := o.Compare(weighted("n-large", largeWeight), weighted("s-large", largeWeight)); got <= 0 {
		t.Fatalf("tied top normal must not displace the special, got %d", got)
	}
}

func TestSort_SpecialsFloatWithSingleException(t *testing.T) {
	special := []entry.Entry{weighted("x", 10)}
	entries := []entry.Entry{
		weighted("y", 5),
		weighted("z", 50),
		weighted("x", 10),
	}

	NewOrdering(50, special).Sort(entries)

	wantOrder := []string{"z", "x", "y"}
	for i, id := range wantOrder {
		if entries[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, entries[i].ID, id, ids(entries))
		}
	}
}

func TestSort_StableForEqualWeights(t *testing.T) {
	entries := []entry.Entry{
		weighted("first", 5),
		weighted("second", 5),
		weighted("third", 5),
	}

	NewOrdering(5, nil).Sort(entries)

	wantOrder := []string{"first", "second", "third"}
	for i, id := range wantOrder {
		if entries[i].ID != id {
			t.Fatalf("stable sort reordered ties: %v", ids(entries))
		}
	}
}

func ids(entries []entry.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
