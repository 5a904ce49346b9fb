package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/journal"
	"github.com/danielpatrickdp/choicerank/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to choicerank.db (sqlite backend)")
	dirPath := flag.String("dir", "", "path to the history directory (file backend)")
	storeName := flag.String("store", "", "show one store's records instead of the store list")
	journalPath := flag.String("journal", "", "show a choice journal instead of a store")
	last := flag.Int("last", 0, "limit output to the N most recent rows (0 = all)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *journalPath != "" {
		if err := runJournalMode(*journalPath, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if (*dbPath == "" && *dirPath == "") || (*dbPath != "" && *dirPath != "") {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/choicerank.db [--store name] [--last N] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --dir path/to/history [--store name] [--last N] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --journal path/to/journal.jsonl [--last N] [--json]")
		os.Exit(2)
	}

	st, closeStore, err := openStore(*dbPath, *dirPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	if *storeName != "" {
		if err := runDetailMode(st, *storeName, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(st, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// historyStore is satisfied by both backends: load plus store listing.
type historyStore interface {
	store.Store
	ListStores() ([]store.StoreInfo, error)
}

func openStore(dbPath, dirPath string) (historyStore, func() error, error) {
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

// #endregion main

// #region list-mode

type listRow struct {
	Name     string `json:"name"`
	Records  int    `json:"records"`
	Revision string `json:"revision,omitempty"`
	SavedAt  string `json:"saved_at,omitempty"`
}

func runListMode(st historyStore, jsonOut bool) error {
	infos, err := st.ListStores()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(os.Stderr, "no stores found")
		return nil
	}

	rows := make([]listRow, len(infos))
	for i, info := range infos {
		rows[i] = listRow{Name: info.Name, Records: info.RecordCount, Revision: info.Revision}
		if !info.SavedAt.IsZero() {
			rows[i].SavedAt = info.SavedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-24s  %8s  %-10s  %s\n", "Store", "Records", "Revision", "Saved At")
	fmt.Printf("%-24s  %8s  %-10s  %s\n",
		"------------------------", "--------", "----------", "--------------------")
	for _, r := range rows {
		rev := "-"
		if r.Revision != "" {
			rev = shortID(r.Revision)
		}
		saved := "-"
		if r.SavedAt != "" {
			saved = r.SavedAt
		}
		fmt.Printf("%-24s  %8d  %-10s  %s\n", r.Name, r.Records, rev, saved)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type recordRow struct {
	Index   int     `json:"index"`
	EntryID string  `json:"entry_id"`
	TimeMS  int64   `json:"time_ms"`
	Weight  float32 `json:"weight"`
}

type entryTotal struct {
	EntryID string  `json:"entry_id"`
	Count   int     `json:"count"`
	Weight  float32 `json:"total_weight"`
}

type detailOutput struct {
	Store   string       `json:"store"`
	Records int          `json:"records"`
	Rows    []recordRow  `json:"rows"`
	Totals  []entryTotal `json:"totals"`
}

func runDetailMode(st historyStore, name string, last int, jsonOut bool) error {
	name = store.NormalizeName(name)
	records, err := st.Load(name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "store %s holds no records\n", name)
		return nil
	}

	shown := records
	offset := 0
	if last > 0 && len(records) > last {
		offset = len(records) - last
		shown = records[offset:]
	}

	out := detailOutput{
		Store:   name,
		Records: len(records),
		Rows:    make([]recordRow, len(shown)),
		Totals:  entryTotals(records),
	}
	for i, rec := range shown {
		out.Rows[i] = recordRow{Index: offset + i, EntryID: rec.EntryID, TimeMS: rec.Time, Weight: rec.Weight}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Store: %s (%d records)\n", out.Store, out.Records)
	fmt.Printf("%-5s  %-14s  %-20s  %8s\n", "Idx", "Entry", "Chosen At", "Weight")
	fmt.Printf("%-5s  %-14s  %-20s  %8s\n",
		"-----", "--------------", "--------------------", "--------")
	for _, r := range out.Rows {
		fmt.Printf("%-5d  %-14s  %-20s  %8.3f\n", r.Index, r.EntryID, formatMS(r.TimeMS), r.Weight)
	}

	fmt.Printf("\nPer-entry totals:\n")
	for _, t := range out.Totals {
		fmt.Printf("  %-14s  %3d records  %8.3f total weight\n", t.EntryID, t.Count, t.Weight)
	}
	return nil
}

// entryTotals aggregates the full record set per entry, heaviest first.
func entryTotals(records []history.Record) []entryTotal {
	byID := make(map[string]*entryTotal)
	var order []string
	for _, rec := range records {
		t, ok := byID[rec.EntryID]
		if !ok {
			t = &entryTotal{EntryID: rec.EntryID}
			byID[rec.EntryID] = t
			order = append(order, rec.EntryID)
		}
		t.Count++
		t.Weight += rec.Weight
	}

	totals := make([]entryTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, *byID[id])
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Weight != totals[j].Weight {
			return totals[i].Weight > totals[j].Weight
		}
		return totals[i].EntryID < totals[j].EntryID
	})
	return totals
}

// #endregion detail-mode

// #region journal-mode

func runJournalMode(path string, last int, jsonOut bool) error {
	entries, err := journal.Read(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "journal is empty")
		return nil
	}

	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-10s  %-18s  %-14s  %-20s  %8s  %s\n",
		"Seq", "Store", "Entry", "Recorded At", "Weight", "Top After")
	fmt.Printf("%-10s  %-18s  %-14s  %-20s  %8s  %s\n",
		"----------", "------------------", "--------------", "--------------------", "--------", "--------------")
	for _, e := range entries {
		fmt.Printf("%-10s  %-18s  %-14s  %-20s  %8.3f  %s\n",
			shortID(e.Seq), e.Store, e.EntryID, formatMS(e.TimeMS), e.Weight, e.TopAfter)
	}
	return nil
}

// #endregion journal-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func formatMS(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05Z")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
