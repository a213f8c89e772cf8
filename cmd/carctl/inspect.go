package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

func newOptionsCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the make and cylinder filter choices",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadInput(input)
			if err != nil {
				return err
			}

			opts := core.ExtractOptions(records)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "makes (%d): %s\n", len(opts.Makes), strings.Join(opts.Makes, ", "))
			fmt.Fprintf(out, "cylinders (%d): %s\n", len(opts.Cylinders), strings.Join(opts.Cylinders, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Dataset file, .json or .csv (required)")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the detected schema and display columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadInput(input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "dataset is empty")
				return nil
			}

			cols := core.ResolveSchema(records[0])
			label := cols.Schema
			if s, ok := core.LookupSchema(cols.Schema); ok {
				label = s.Label
			}
			fmt.Fprintf(out, "schema: %s (%s)\n", cols.Schema, label)
			for i, c := range cols.Columns {
				fmt.Fprintf(out, "%2d. %s\n", i+1, c)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Dataset file, .json or .csv (required)")
	cmd.MarkFlagRequired("input")
	return cmd
}
