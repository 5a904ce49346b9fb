package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: an
// initial history, a candidate table, and a script of steps with
// expected orderings.
type Fixture struct {
	Description string                        `json:"description"`
	Store       string                        `json:"store,omitempty"`
	MaxHistory  int                           `json:"max_history,omitempty"`
	Candidates  map[string][]FixtureCandidate `json:"candidates"`
	History     []FixtureRecord               `json:"history,omitempty"`
	Steps       []FixtureStep                 `json:"steps"`
}

// FixtureCandidate mirrors entry.Entry with JSON tags. label falls back
// to id when omitted.
type FixtureCandidate struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// FixtureRecord mirrors history.Record with JSON tags.
type FixtureRecord struct {
	EntryID string  `json:"entry_id"`
	TimeMS  int64   `json:"time_ms"`
	Weight  float32 `json:"weight"`
}

// FixtureStep is one scripted operation. Op selects which other fields
// apply; expectations are checked after the step settles.
type FixtureStep struct {
	Op      string             `json:"op"`
	Query   string             `json:"query,omitempty"`
	Entries []FixtureCandidate `json:"entries,omitempty"`
	Index   int                `json:"index,omitempty"`
	EntryID string             `json:"entry_id,omitempty"`
	Size    int                `json:"size,omitempty"`

	ExpectOrder []string `json:"expect_order,omitempty"`
	ExpectTop   string   `json:"expect_top,omitempty"`
}

// Step operations.
const (
	OpQuery      = "query"
	OpPrepend    = "prepend"
	OpAdditional = "additional"
	OpChoose     = "choose"
	OpChooseID   = "choose_id"
	OpDefault    = "set_default"
	OpMaxSize    = "max_size"
)

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-io

// #region conversions

// ToEntry converts a fixture candidate to a domain entry of the given kind.
func (c FixtureCandidate) ToEntry(kind entry.Kind) entry.Entry {
	label := c.Label
	if label == "" {
		label = c.ID
	}
	return entry.Entry{ID: c.ID, Label: label, Kind: kind, Payload: c.Payload}
}

// ToRecord converts a fixture record to a domain record.
func (r FixtureRecord) ToRecord() history.Record {
	return history.Record{EntryID: r.EntryID, Time: r.TimeMS, Weight: r.Weight}
}

// FromRecord converts a domain record to its fixture form.
func FromRecord(r history.Record) FixtureRecord {
	return FixtureRecord{EntryID: r.EntryID, TimeMS: r.Time, Weight: r.Weight}
}

func toEntries(cands []FixtureCandidate, kind entry.Kind) []entry.Entry {
	entries := make([]entry.Entry, len(cands))
	for i, c := range cands {
		entries[i] = c.ToEntry(kind)
	}
	return entries
}

// #endregion conversions
