package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/entry"
)

// #region format

// Catalog file shape:
//
//	queries:
//	  share-text:
//	    - id: mail
//	      label: Mail
//	      payload: "mail --compose"
//	    - id: chat
//	      payload: "chat --share"
//
// label falls back to id when omitted. Duplicate ids within one query
// collapse to the first occurrence.
type catalogFile struct {
	Queries map[string][]catalogEntry `yaml:"queries"`
}

type catalogEntry struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Payload string `yaml:"payload"`
}

// #endregion format

// #region catalog

// Catalog is a fixed table of candidates per query, loaded from YAML. It
// implements chooser.CandidateSource and never fails at resolve time: an
// unknown query simply has no candidates.
type Catalog struct {
	queries map[string][]entry.Entry
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	queries := make(map[string][]entry.Entry, len(file.Queries))
	for query, raw := range file.Queries {
		entries := make([]entry.Entry, 0, len(raw))
		for i, ce := range raw {
			if ce.ID == "" {
				return nil, fmt.Errorf("query %q: candidate %d has no id", query, i)
			}
			label := ce.Label
			if label == "" {
				label = ce.ID
			}
			entries = append(entries, entry.Entry{
				ID:      ce.ID,
				Label:   label,
				Kind:    entry.KindResolved,
				Payload: ce.Payload,
			})
		}
		queries[query] = entry.DedupByID(entries)
	}
	return &Catalog{queries: queries}, nil
}

// Resolve returns the catalog candidates for q, empty for unknown queries.
func (c *Catalog) Resolve(q chooser.Query) ([]entry.Entry, error) {
	return entry.Clone(c.queries[string(q)]), nil
}

// Queries lists the known query names, sorted.
func (c *Catalog) Queries() []string {
	names := make([]string, 0, len(c.queries))
	for q := range c.queries {
		names = append(names, q)
	}
	sort.Strings(names)
	return names
}

// #endregion catalog
