package rank

import (
	"sort"

	"github.com/danielpatrickdp/choicerank/internal/entry"
)

// #region ordering

// Ordering ranks one sorted pass: special (pinned) entries sort above
// normal ones, except that a normal entry holding the largest normal weight
// outranks every special entry when that weight strictly exceeds the
// largest special weight. Among two specials or two normals it falls back
// to weight-descending order and reports ties as equal, so it must be used
// with a stable sort.
type Ordering struct {
	largestNormal  float32
	largestSpecial float32
	special        map[string]struct{}
}

// NewOrdering builds the ordering for one pass. largestNormal must be the
// largest weight among the non-special entries only; special holds the
// entries pinned for this pass. IDs are assumed unique across the pass.
func NewOrdering(largestNormal float32, special []entry.Entry) *Ordering {
	o := &Ordering{
		largestNormal:  largestNormal,
		largestSpecial: LargestWeight(special),
		special:        make(map[string]struct{}, len(special)),
	}
	for _, e := range special {
		o.special[e.ID] = struct{}{}
	}
	return o
}

// Compare returns a negative value when a sorts before b, positive when b
// sorts before a, and 0 for ties.
func (o *Ordering) Compare(a, b entry.Entry) int {
	aSpecial := o.isSpecial(a)
	bSpecial := o.isSpecial(b)
	if aSpecial != bSpecial {
		if aSpecial {
			if o.normalOutranksSpecials(b) {
				return 1
			}
			return -1
		}
		if o.normalOutranksSpecials(a) {
			return -1
		}
		return 1
	}
	switch {
	case a.Weight > b.Weight:
		return -1
	case a.Weight < b.Weight:
		return 1
	default:
		return 0
	}
}

// Sort orders entries in place with a stable sort under Compare.
func (o *Ordering) Sort(entries []entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return o.Compare(entries[i], entries[j]) < 0
	})
}

func (o *Ordering) isSpecial(e entry.Entry) bool {
	_, ok := o.special[e.ID]
	return ok
}

func (o *Ordering) normalOutranksSpecials(e entry.Entry) bool {
	return e.Weight == o.largestNormal && o.largestNormal > o.largestSpecial
}

// #endregion ordering

// #region largest-weight

// LargestWeight returns the largest weight among entries, or 0 when there
// are none. Weights are never negative by construction, so 0 is a safe
// floor.
func LargestWeight(entries []entry.Entry) float32 {
	var largest float32
	for _, e := range entries {
		if e.Weight > largest {
			largest = e.Weight
		}
	}
	return largest
}

// #endregion largest-weight
