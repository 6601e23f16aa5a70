// Command fundgen writes a synthetic private-equity fund table as CSV, or
// describes an existing one.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"jcurve-lab/internal/fundtable"
)

func main() {
	// Parse flags
	n := flag.Int("n", 10, "Number of funds to generate")
	seed := flag.Uint64("seed", 42, "Random seed")
	out := flag.String("out", "data/synthetic_fund_data.csv", "Output CSV path")
	describe := flag.String("describe", "", "Describe an existing CSV instead of generating one")
	all := flag.Bool("all", false, "Describe every numeric column, not only IRR and MOIC")

	flag.Parse()

	if *describe != "" {
		if err := describeFile(*describe, *all); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	records, err := fundtable.Generate(*n, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating funds: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := fundtable.WriteCSV(f, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Data saved to %s\n", *out)
}

func describeFile(path string, all bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := fundtable.ReadCSV(f)
	if err != nil {
		return err
	}

	columns := fundtable.KeyMetrics
	if all {
		columns = fundtable.NumericColumns
	}
	summaries, err := fundtable.Describe(records, columns...)
	if err != nil {
		return err
	}

	fmt.Println("Key Metrics Summary:")
	fmt.Print(fundtable.RenderDescribe(summaries))
	return nil
}
