package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// #region entry

// Entry is one journal line: a record of one choice as it was made, for
// humans and tooling. The history file stays the source of truth; the
// journal is an audit trail and is never read back by the model.
type Entry struct {
	Seq      string  `json:"seq"`
	Store    string  `json:"store,omitempty"`
	EntryID  string  `json:"entry_id"`
	TimeMS   int64   `json:"time_ms"`
	Weight   float32 `json:"weight"`
	TopAfter string  `json:"top_after,omitempty"`
}

// #endregion entry

// #region journal

// Journal appends entries to one JSONL file, one line per choice. Safe
// for concurrent use.
type Journal struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens or creates the journal file for appending.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{f: f}, nil
}

// Record appends one entry. A zero Seq gets a fresh UUID and a zero
// TimeMS gets the current time, so callers only fill what they know.
func (j *Journal) Record(e Entry) error {
	if e.Seq == "" {
		e.Seq = uuid.New().String()
	}
	if e.TimeMS == 0 {
		e.TimeMS = time.Now().UnixMilli()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.f.Write(data); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

// #endregion journal

// #region read

// Read returns every entry in the journal at path, oldest first. A
// missing file is an empty journal.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}
	var entries []Entry
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("parse journal %s line %d: %w", path, i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// #endregion read
