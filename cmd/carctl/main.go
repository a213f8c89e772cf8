// Command carctl inspects and exports vehicle datasets offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "carctl",
		Short:        "Inspect, filter and export vehicle datasets",
		Long:         "carctl loads a JSON or CSV vehicle dataset and runs the same column detection, filtering, sorting and export the web table uses.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newOptionsCmd(),
		newColumnsCmd(),
		newExportCmd(),
		newPublishCmd(),
	)
	return root
}

// loadInput reads the dataset named by --input.
func loadInput(path string) ([]core.Record, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required")
	}
	records, err := source.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return records, nil
}
