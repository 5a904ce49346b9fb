package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/choicerank/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	asJSON := flag.Bool("json", false, "emit results as JSON instead of a table")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	os.Exit(runFixtureMode(*fixturePath, *asJSON))
}

// #endregion main

// #region run

func runFixtureMode(path string, asJSON bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results := replay.Replay(f)
	summary := replay.Summarize(results)

	if asJSON {
		if err := printJSON(toOutput(f, results, summary)); err != nil {
			fmt.Fprintf(os.Stderr, "encode results: %v\n", err)
			return 2
		}
	} else {
		printResults(f, results, summary)
	}

	if summary.Failures > 0 {
		return 1
	}
	return 0
}

// #endregion run

// #region output

// stepRow is the JSON shape of one replayed step.
type stepRow struct {
	Step     int      `json:"step"`
	Op       string   `json:"op"`
	Payload  string   `json:"payload,omitempty"`
	Handled  bool     `json:"handled,omitempty"`
	Order    []string `json:"order"`
	Err      string   `json:"error,omitempty"`
	Mismatch string   `json:"mismatch,omitempty"`
}

type replayOutput struct {
	Description string    `json:"description"`
	Steps       []stepRow `json:"steps"`
	TotalSteps  int       `json:"total_steps"`
	Chooses     int       `json:"chooses"`
	Failures    int       `json:"failures"`
	FinalOrder  []string  `json:"final_order"`
}

func toOutput(f *replay.Fixture, results []replay.Result, summary replay.Summary) replayOutput {
	steps := make([]stepRow, len(results))
	for i, r := range results {
		steps[i] = stepRow{
			Step:     r.Step,
			Op:       r.Op,
			Payload:  r.Payload,
			Handled:  r.Handled,
			Order:    r.Order,
			Err:      r.Err,
			Mismatch: r.Mismatch,
		}
	}
	return replayOutput{
		Description: f.Description,
		Steps:       steps,
		TotalSteps:  summary.TotalSteps,
		Chooses:     summary.Chooses,
		Failures:    summary.Failures,
		FinalOrder:  summary.FinalOrder,
	}
}

func printResults(f *replay.Fixture, results []replay.Result, summary replay.Summary) {
	if f.Description != "" {
		fmt.Printf("Fixture: %s\n", f.Description)
	}
	fmt.Printf("%-5s| %-12s| %-6s| %s\n", "Step", "Op", "Check", "Order")
	fmt.Printf("%-5s+%-12s+%-6s+%s\n", "-----", "-------------", "-------", "--------------------")

	for _, r := range results {
		status := "OK"
		detail := strings.Join(r.Order, " ")
		switch {
		case r.Err != "":
			status = "ERR"
			detail = r.Err
		case r.Mismatch != "":
			status = "DIFF"
			detail = r.Mismatch
		}
		fmt.Printf("%-5d| %-12s| %-6s| %s\n", r.Step, r.Op, status, detail)
	}

	fmt.Printf("\nFinal order: %s\n", strings.Join(summary.FinalOrder, " "))
	fmt.Printf("Summary: %d steps, %d chooses, %d diverge\n",
		summary.TotalSteps, summary.Chooses, summary.Failures)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
