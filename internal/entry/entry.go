package entry

// #region kind

// Kind tags where an entry came from.
type Kind string

const (
	// KindResolved marks entries supplied by a CandidateSource for the
	// current query.
	KindResolved Kind = "resolved"
	// KindCustom marks entries supplied directly by the caller, either
	// prepended or additional.
	KindCustom Kind = "custom"
)

// #endregion kind

// #region entry

// Entry is one choosable candidate. ID is the stable key used for history
// matching and dedup. Payload is an opaque launch descriptor the core never
// interprets. Weight is derived state, recomputed on every sort pass and
// never persisted.
type Entry struct {
	ID      string
	Label   string
	Kind    Kind
	Payload string
	Weight  float32
}

// Equal reports whether two entries are the same candidate at the same
// weight. Label, kind, and payload do not participate.
func (e Entry) Equal(o Entry) bool {
	return e.ID == o.ID && e.Weight == o.Weight
}

// Less orders entries by weight, heaviest first.
func (e Entry) Less(o Entry) bool {
	return e.Weight > o.Weight
}

// #endregion entry

// #region helpers

// Clone returns an independent copy of entries. A nil or empty input yields
// an empty non-nil slice so callers can append without aliasing.
func Clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// DedupByID removes entries whose ID was already seen, keeping the first
// occurrence. Order is preserved.
func DedupByID(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// #endregion helpers
