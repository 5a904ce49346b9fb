package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/replay"
	"github.com/danielpatrickdp/choicerank/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to choicerank.db (sqlite backend)")
	dirPath := flag.String("dir", "", "path to the history directory (file backend)")
	storeName := flag.String("store", chooser.DefaultHistoryName, "store name to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	last := flag.Int("last", 0, "number of most recent records to export (0 = all)")
	flag.Parse()

	if *outPath == "" || (*dbPath == "" && *dirPath == "") || (*dbPath != "" && *dirPath != "") {
		fmt.Fprintln(os.Stderr, "usage: export --db path/to/choicerank.db --out fixture.json [--store name] [--last N]")
		fmt.Fprintln(os.Stderr, "       export --dir path/to/history --out fixture.json [--store name] [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *dirPath, *storeName, *outPath, *last); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, dirPath, storeName, outPath string, last int) error {
	st, closeStore, err := openStore(dbPath, dirPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	name := store.NormalizeName(storeName)
	records, err := st.Load(name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("store %s holds no history records", name)
	}
	if last > 0 && len(records) > last {
		records = records[len(records)-last:]
	}
	fmt.Printf("Found %d history records\n", len(records))

	f := buildFixture(name, records)
	if err := replay.SaveFixture(outPath, &f); err != nil {
		return err
	}
	fmt.Printf("Wrote fixture to %s (%d candidates, %d history records)\n",
		outPath, len(f.Candidates[exportQuery]), len(f.History))
	return nil
}

func openStore(dbPath, dirPath string) (store.Store, func() error, error) {
	if dbPath != "" {
		s, err := store.NewDBStore(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	s, err := store.NewFileStore(dirPath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}

// #endregion export

// #region fixture

// exportQuery keys the synthesized candidate table inside the fixture.
const exportQuery = "history"

func buildFixture(name string, records []history.Record) replay.Fixture {
	// Candidate table: every entry seen in the history, first appearance first.
	seen := make(map[string]bool)
	var candidates []replay.FixtureCandidate
	for _, rec := range records {
		if seen[rec.EntryID] {
			continue
		}
		seen[rec.EntryID] = true
		candidates = append(candidates, replay.FixtureCandidate{ID: rec.EntryID})
	}

	fixtureRecords := make([]replay.FixtureRecord, len(records))
	for i, rec := range records {
		fixtureRecords[i] = replay.FromRecord(rec)
	}

	f := replay.Fixture{
		Description: fmt.Sprintf("Store export: %d records from %s", len(records), name),
		Store:       name,
		Candidates:  map[string][]replay.FixtureCandidate{exportQuery: candidates},
		History:     fixtureRecords,
		Steps:       []replay.FixtureStep{{Op: replay.OpQuery, Query: exportQuery}},
	}

	// Replay once to pin the order the current ranking produces; the
	// export then doubles as a regression fixture.
	results := replay.Replay(&f)
	f.Steps[0].ExpectOrder = results[len(results)-1].Order
	return f
}

// #endregion fixture
