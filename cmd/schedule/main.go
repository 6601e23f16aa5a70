// Command schedule prints the deterministic base, optimistic and
// pessimistic J-curve schedules with IRR and DPI for each.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"jcurve-lab/internal/config"
	"jcurve-lab/internal/domain"
	"jcurve-lab/internal/orchestrator"
	"jcurve-lab/internal/reporting"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file (yaml, json or toml)")
	years := flag.Int("years", 0, "Fund life in years (overrides config)")
	commitments := flag.Float64("commitments", 0, "Committed capital (overrides config)")
	peak := flag.Int("peak", 0, "Peak drawdown year (overrides config)")
	mode := flag.String("mode", "", "Schedule mode: linear, accumulating (overrides config)")
	outputCSV := flag.Bool("csv", false, "Output schedules as CSV")
	outputJSON := flag.Bool("json", false, "Output schedules as JSON")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "years":
			cfg.Simulation.Years = *years
		case "commitments":
			cfg.Simulation.Commitments = *commitments
		case "peak":
			cfg.Simulation.PeakDrawdownYear = *peak
		case "mode":
			cfg.Schedule.Mode = *mode
		}
	})

	scheduleMode, err := domain.ParseScheduleMode(cfg.Schedule.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	orch := orchestrator.New(orchestrator.Options{Solver: cfg.IRRSolver(), Mode: scheduleMode})
	set, err := orch.Scenarios(scheduleMode, cfg.Simulation.Years, cfg.Simulation.Commitments, cfg.Simulation.PeakDrawdownYear)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schedules: %v\n", err)
		os.Exit(1)
	}

	// Output result
	switch {
	case *outputJSON:
		output, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding schedules: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
	case *outputCSV:
		fmt.Print(reporting.RenderScheduleCSV(set.Schedules))
	default:
		printScenarios(set)
	}
}

// printScenarios outputs a human-readable table per scenario.
func printScenarios(set *orchestrator.ScenarioSet) {
	for i, s := range set.Schedules {
		fmt.Println()
		fmt.Printf("=== %s (%s) ===\n", s.Scenario, s.Mode)
		fmt.Printf("%-6s %14s %14s %14s %14s\n", "Year", "Drawdown", "Distribution", "Cash Flow", "Cumulative")
		for p, cf := range s.CashFlows {
			fmt.Printf("%-6d %14.2f %14.2f %14.2f %14.2f\n",
				cf.Period, s.Drawdowns[p], s.Distributions[p], cf.Amount, s.Cumulative[p])
		}

		m := set.Metrics[i]
		if pct, ok := m.IRRPct(); ok {
			fmt.Printf("IRR: %.2f%%\n", pct)
		} else {
			fmt.Printf("IRR: undefined (%s)\n", m.IRRError)
		}
		if m.DPI != nil {
			fmt.Printf("DPI: %.2f\n", *m.DPI)
		} else {
			fmt.Printf("DPI: undefined (%s)\n", m.DPIError)
		}
	}
}
