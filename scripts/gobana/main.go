// gobana prints the per-run sample counts of a dataset.gob snapshot written
// by the gob writer, and can convert it back to the CSV layout.
package main

import (
	"Go2FlavorSpectra/internal/aggregator"
	"Go2FlavorSpectra/internal/engine/writer"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	var csvOut string
	fs := pflag.NewFlagSet("gobana", pflag.ExitOnError)
	fs.StringVarP(&csvOut, "csv", "o", "", "Also write the snapshot as CSV to this path")
	fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: go run ./scripts/gobana [-o out.csv] <dataset.gob>")
		os.Exit(1)
	}

	dataset, err := writer.ReadGob(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode gob data: %v\n", err)
		os.Exit(1)
	}

	summary := aggregator.Summarize(dataset)
	fmt.Printf("Decoded %s:\n", summary)
	for _, id := range summary.Runs {
		fmt.Printf("  %-30s %-10s %6d samples\n", id.Test, id.Flavor, summary.SamplesByRun[id])
	}

	if csvOut != "" {
		if err := aggregator.WriteCSVFile(csvOut, dataset); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", csvOut)
	}
}
