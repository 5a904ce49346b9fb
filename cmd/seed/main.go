package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/choicerank/internal/catalog"
	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to choicerank.db (sqlite backend)")
	dirPath := flag.String("dir", "", "path to the history directory (file backend)")
	catalogPath := flag.String("catalog", "", "catalog YAML with the candidate queries")
	queryName := flag.String("query", "", "catalog query to resolve candidates from")
	choices := flag.String("choices", "", "comma-separated entry ids to choose, in order")
	storeName := flag.String("store", chooser.DefaultHistoryName, "store name to seed")
	repeat := flag.Int("repeat", 1, "times to run the whole choice script")
	maxSize := flag.Int("max", 0, "history cap to apply before seeding (0 = keep default)")
	flag.Parse()

	if *catalogPath == "" || *queryName == "" || *choices == "" ||
		(*dbPath == "" && *dirPath == "") || (*dbPath != "" && *dirPath != "") {
		fmt.Fprintln(os.Stderr, "usage: seed --catalog catalog.yaml --query q --choices a,b,a --db path/to/choicerank.db [--store name] [--repeat N] [--max N]")
		fmt.Fprintln(os.Stderr, "       seed --catalog catalog.yaml --query q --choices a,b,a --dir path/to/history [--store name] [--repeat N] [--max N]")
		os.Exit(2)
	}

	script := parseScript(*choices)
	if len(script) == 0 {
		fmt.Fprintln(os.Stderr, "empty choice script")
		os.Exit(2)
	}

	target := *dbPath
	if target == "" {
		target = *dirPath
	}
	fmt.Println("=== Store Seed Tool ===")
	fmt.Printf("  Store: %s @ %s | Catalog: %s\n", *storeName, target, *catalogPath)
	fmt.Printf("  Query: %s | Script: %d choices x %d\n", *queryName, len(script), *repeat)

	st, closeStore, err := openStore(*dbPath, *dirPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	reg := chooser.NewRegistry(st, cat)
	defer reg.Close()

	m := reg.Get(*storeName)
	if *maxSize > 0 {
		m.SetHistoryMaxSize(*maxSize)
	}
	m.SetQuery(chooser.Query(*queryName))
	// Let any existing history land before the script appends to it.
	reg.Drain()
	if m.ResolvedCount() == 0 {
		log.Fatalf("query %q resolved no candidates", *queryName)
	}

	fmt.Println("\n--- Applying choices ---")
	total := len(script) * *repeat
	applied, skipped, step := 0, 0, 0
	for rep := 0; rep < *repeat; rep++ {
		for _, id := range script {
			step++
			if idx := m.IndexOf(id); idx < 0 {
				log.Printf("unknown entry %q, skipping", id)
				skipped++
			} else if _, _, err := m.Choose(idx); err != nil {
				log.Printf("choose %s: %v", id, err)
				skipped++
			} else {
				applied++
			}
			if step%10 == 0 || step == total {
				fmt.Printf("  [%d/%d] processed, %d applied so far\n", step, total, applied)
			}
		}
	}
	reg.Drain()

	fmt.Printf("\n=== Seed Complete ===\n")
	fmt.Printf("  Choices applied: %d (skipped %d)\n", applied, skipped)
	fmt.Printf("  History size: %d/%d\n", m.HistorySize(), m.HistoryMaxSize())
	if top, ok := m.DefaultEntry(); ok {
		fmt.Printf("  Top entry: %s\n", top.ID)
	}
}

// #endregion main

// #region helpers

func parseScript(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
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

// #endregion helpers
