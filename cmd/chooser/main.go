package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/choicerank/internal/catalog"
	"github.com/danielpatrickdp/choicerank/internal/chooser"
	"github.com/danielpatrickdp/choicerank/internal/config"
	"github.com/danielpatrickdp/choicerank/internal/entry"
	"github.com/danielpatrickdp/choicerank/internal/history"
	"github.com/danielpatrickdp/choicerank/internal/journal"
)

// #region main

func main() {
	configPath := flag.String("config", "", "config file (default $CHOICERANK_CONFIG, then ./choicerank.yaml)")
	storeName := flag.String("store", "", "history store name (overrides config)")
	query := flag.String("query", "", "initial candidate query")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *storeName != "" {
		cfg.StoreName = *storeName
	}

	st, closeStore, err := cfg.OpenStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	var jr *journal.Journal
	if cfg.JournalPath != "" {
		jr, err = journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("open journal: %v", err)
		}
		defer jr.Close()
	}

	reg := chooser.NewRegistry(st, cat)
	defer reg.Close()

	m := reg.Get(cfg.StoreName)
	if cfg.HistoryMax != history.DefaultMaxSize {
		m.SetHistoryMaxSize(cfg.HistoryMax)
	}
	if *query != "" {
		m.SetQuery(chooser.Query(*query))
	}
	cancel := m.Subscribe(func() { fmt.Println("(order updated)") })
	defer cancel()

	fmt.Println("=== choicerank ===")
	fmt.Printf("  store: %s (%s backend) | catalog: %s\n", m.Name(), cfg.Backend, cfg.CatalogPath)
	fmt.Printf("  queries: %s\n", strings.Join(cat.Queries(), ", "))
	fmt.Println("Type 'help' for commands, 'quit' to exit.")

	repl(m, jr)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// #endregion main

// #region repl

func repl(m *chooser.Model, jr *journal.Journal) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			fmt.Println("bye")
			return
		case "help":
			printHelp()
		case "list":
			printEntries(m)
		case "stats":
			printStats(m)
		case "query":
			m.SetQuery(chooser.Query(strings.Join(args, " ")))
			printEntries(m)
		case "pin":
			m.SetPrepended(customEntries(args))
			fmt.Printf("pinned %d entries (applies on the next assembly)\n", len(args))
		case "extra":
			m.SetAdditional(customEntries(args))
			fmt.Printf("appended %d entries (applies on the next assembly)\n", len(args))
		case "choose":
			doChoose(m, jr, args)
		case "default":
			doDefault(m, jr, args)
		case "max":
			doMax(m, args)
		default:
			fmt.Printf("unknown command %q (try 'help')\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin: %v", err)
	}
}

func printHelp() {
	fmt.Println(`commands:
  list           show the current ranking
  stats          show model state and history usage
  query Q        resolve candidates for query Q and rank them
  pin ID...      replace the custom entries assembled before candidates
  extra ID...    replace the custom entries assembled after candidates
  choose N       choose the entry at index N and record it
  default N      promote the entry at index N to default
  max N          cap the history at N records
  quit           exit`)
}

// #endregion repl

// #region commands

func doChoose(m *chooser.Model, jr *journal.Journal, args []string) {
	idx, ok := parseNumber(args, "choose N")
	if !ok {
		return
	}
	ent, err := m.EntryAt(idx)
	if err != nil {
		log.Printf("choose: %v", err)
		return
	}
	payload, handled, err := m.Choose(idx)
	if err != nil {
		log.Printf("choose: %v", err)
		return
	}
	switch {
	case handled:
		fmt.Printf("%s consumed by the listener; nothing recorded\n", ent.Label)
		return
	case payload == "":
		fmt.Printf("chose %s\n", ent.Label)
	default:
		fmt.Printf("chose %s -> %s\n", ent.Label, payload)
	}
	journalChoice(jr, m, ent.ID, history.DefaultRecordWeight)
}

func doDefault(m *chooser.Model, jr *journal.Journal, args []string) {
	idx, ok := parseNumber(args, "default N")
	if !ok {
		return
	}
	ent, err := m.EntryAt(idx)
	if err != nil {
		log.Printf("default: %v", err)
		return
	}
	// The journal line carries the same weight SetDefaultEntry synthesizes.
	weight := float32(chooser.DefaultEntryInflation)
	if top, ok := m.DefaultEntry(); ok {
		weight = top.Weight - ent.Weight + chooser.DefaultEntryInflation
	}
	if err := m.SetDefaultEntry(idx); err != nil {
		log.Printf("default: %v", err)
		return
	}
	fmt.Printf("%s is now the default\n", ent.Label)
	journalChoice(jr, m, ent.ID, weight)
}

func doMax(m *chooser.Model, args []string) {
	n, ok := parseNumber(args, "max N")
	if !ok {
		return
	}
	m.SetHistoryMaxSize(n)
	fmt.Printf("history capped at %d (%d held)\n", m.HistoryMaxSize(), m.HistorySize())
}

func parseNumber(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		fmt.Printf("usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("usage: %s\n", usage)
		return 0, false
	}
	return n, true
}

func journalChoice(jr *journal.Journal, m *chooser.Model, entryID string, weight float32) {
	if jr == nil {
		return
	}
	e := journal.Entry{Store: m.Name(), EntryID: entryID, Weight: weight}
	if top, ok := m.DefaultEntry(); ok {
		e.TopAfter = top.ID
	}
	if err := jr.Record(e); err != nil {
		log.Printf("journal: %v", err)
	}
}

func customEntries(ids []string) []entry.Entry {
	entries := make([]entry.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, entry.Entry{ID: id, Label: id, Kind: entry.KindCustom})
	}
	return entries
}

// #endregion commands

// #region output

func printEntries(m *chooser.Model) {
	entries := m.OrderedEntries()
	if len(entries) == 0 {
		fmt.Println("(no entries; set a query first)")
		return
	}
	fmt.Printf("%-5s| %-8s| %-14s| %-20s| %s\n", "#", "weight", "id", "label", "payload")
	fmt.Println(strings.Repeat("-", 68))
	for i, e := range entries {
		marker := strconv.Itoa(i)
		if i == 0 {
			marker += "*"
		}
		fmt.Printf("%-5s| %-8.3f| %-14s| %-20s| %s\n", marker, e.Weight, e.ID, e.Label, e.Payload)
	}
}

func printStats(m *chooser.Model) {
	fmt.Printf("store: %s | state: %s | query: %q\n", m.Name(), m.State(), m.Query())
	fmt.Printf("entries: %d (%d resolved) | history: %d/%d records\n",
		m.Count(), m.ResolvedCount(), m.HistorySize(), m.HistoryMaxSize())
	if top, ok := m.DefaultEntry(); ok {
		fmt.Printf("default: %s (%s)\n", top.Label, top.ID)
	}
}

// #endregion output
