package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autofeat/internal/bucket"
	"autofeat/internal/config"
	"autofeat/internal/features"
	"autofeat/internal/table"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Print the bucket ranges computed for one numeric column",
	Long: `Reads one column of a table, ignores blank cells and prints the ranges
that reconciliation would use for it with k buckets. The job file is only
consulted for the input delimiter and is optional.`,
	Args: cobra.NoArgs,
	RunE: runBuckets,
}

var bucketsFlags struct {
	in     string
	column string
	k      int
	comma  string
}

func init() {
	bucketsCmd.Flags().StringVar(&bucketsFlags.in, "in", "", "input table")
	bucketsCmd.Flags().StringVar(&bucketsFlags.column, "column", "", "numeric column to bucket")
	bucketsCmd.Flags().IntVarP(&bucketsFlags.k, "buckets", "k", 4, "number of buckets")
	bucketsCmd.Flags().StringVar(&bucketsFlags.comma, "comma", "", `field delimiter (default tab; "\t" or "tab" also mean tab)`)
	_ = bucketsCmd.MarkFlagRequired("in")
	_ = bucketsCmd.MarkFlagRequired("column")
}

func runBuckets(cmd *cobra.Command, _ []string) error {
	if bucketsFlags.k < 1 {
		return fmt.Errorf("-k must be at least 1, got %d", bucketsFlags.k)
	}
	comma := config.Comma(bucketsFlags.comma, table.DefaultComma)
	data, err := table.Load(cmd.Context(), table.Options{Comma: comma, Logger: logger}, bucketsFlags.in)
	if err != nil {
		return err
	}
	col := -1
	for j, h := range data.Header {
		if h == bucketsFlags.column {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("column %q not in %s", bucketsFlags.column, bucketsFlags.in)
	}

	values := make([]float64, 0, len(data.Rows))
	for r, row := range data.Rows {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return fmt.Errorf("row %d: %q is not numeric", r+1, row[col])
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return fmt.Errorf("column %q has no numeric values", bucketsFlags.column)
	}

	w := cmd.OutOrStdout()
	for i, rg := range bucket.FromUnsorted(values, bucketsFlags.k) {
		fmt.Fprintf(w, "%s_B%d\t%s\n", bucketsFlags.column, i, features.FormatRange(rg))
	}
	return nil
}
