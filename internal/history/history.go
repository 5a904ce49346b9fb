package history

// #region record

// Record is one recorded choice: which entry, when (Unix milliseconds), and
// at what weight. Time is a plain int64 so that a record compares equal to
// itself after any save/load round trip.
type Record struct {
	EntryID string
	Time    int64
	Weight  float32
}

// DefaultRecordWeight is the weight of an ordinary choice record.
const DefaultRecordWeight float32 = 1.0

// #endregion record

// #region log

// DefaultMaxSize is the record cap applied when none is configured.
const DefaultMaxSize = 50

// Log is a bounded, ordered run of records, oldest first, newest last.
// A Log is not safe for concurrent use; the owning model guards it.
type Log struct {
	records []Record
	max     int
}

// NewLog returns an empty log capped at DefaultMaxSize.
func NewLog() *Log {
	return &Log{max: DefaultMaxSize}
}

// Len returns the number of records currently held.
func (l *Log) Len() int {
	return len(l.records)
}

// Max returns the current record cap.
func (l *Log) Max() int {
	return l.max
}

// Records returns a copy of the records, oldest first.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// #endregion log

// #region mutation

// Append adds a record at the newest position. The cap is not enforced
// here; callers follow up with Prune.
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Prune drops oldest records until the log fits its cap and returns how
// many were dropped.
func (l *Log) Prune() int {
	excess := len(l.records) - l.max
	if excess <= 0 {
		return 0
	}
	l.records = append(l.records[:0], l.records[excess:]...)
	return excess
}

// SetMax changes the cap and prunes immediately, returning how many
// records were dropped. A negative cap is treated as zero.
func (l *Log) SetMax(max int) int {
	if max < 0 {
		max = 0
	}
	l.max = max
	return l.Prune()
}

// #endregion mutation

// #region merge

// Merge replaces the log contents with the set union of loaded and the
// current records: loaded records first in their loaded order, then any
// in-memory records absent from loaded, in their in-memory order, newest
// last. Union is over full record equality. Duplicates inside loaded
// collapse to the first occurrence. Returns true when the in-memory side
// contributed at least one record loaded did not have, meaning the backing
// store is behind the log.
func (l *Log) Merge(loaded []Record) bool {
	seen := make(map[Record]struct{}, len(loaded)+len(l.records))
	merged := make([]Record, 0, len(loaded)+len(l.records))
	for _, r := range loaded {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
	}
	novel := false
	for _, r := range l.records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
		novel = true
	}
	l.records = merged
	return novel
}

// #endregion merge
