package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autofeat/internal/config"
	"autofeat/internal/features"
	"autofeat/internal/table"
)

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize",
	Short: "Turn a table of attribute values into feature vectors",
	Long: `Reads a table whose header names the job attributes, evaluates the
feature schema on every row and writes one vector per row, headed by the
schema column names. Rows with values that do not parse are skipped.`,
	Args: cobra.NoArgs,
	RunE: runVectorize,
}

var vectorizeFlags struct {
	in, out string
}

func init() {
	vectorizeCmd.Flags().StringVar(&vectorizeFlags.in, "in", "", "input table of attribute values")
	vectorizeCmd.Flags().StringVar(&vectorizeFlags.out, "out", "", "output table of feature vectors")
	_ = vectorizeCmd.MarkFlagRequired("in")
	_ = vectorizeCmd.MarkFlagRequired("out")
}

func runVectorize(cmd *cobra.Command, _ []string) error {
	job, err := loadJob(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	s, err := loadSchema(job)
	if err != nil {
		return err
	}
	comma := config.Comma(job.Input.Comma, table.DefaultComma)
	data, err := table.Load(cmd.Context(), table.Options{Comma: comma, Logger: logger}, vectorizeFlags.in)
	if err != nil {
		return err
	}

	attrs := s.Attributes()
	pos := make([]int, len(attrs))
	for i, a := range attrs {
		pos[i] = -1
		for j, h := range data.Header {
			if h == a.Name {
				pos[i] = j
				break
			}
		}
	}

	out := make([][]string, 0, len(data.Rows))
	skipped := 0
	for r, row := range data.Rows {
		vec, err := vectorizeRow(s, attrs, pos, row)
		if err != nil {
			skipped++
			logger.Warn("skipping row", zap.Int("row", r+1), zap.Error(err))
			continue
		}
		cells := make([]string, len(vec))
		for i, v := range vec {
			cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		out = append(out, cells)
	}

	if err := table.Write(vectorizeFlags.out, comma, s.Names(), out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d vectors of %d features written to %s (%d rows skipped)\n",
		len(out), s.Len(), vectorizeFlags.out, skipped)
	return nil
}

// vectorizeRow parses the attribute cells of row and builds its vector.
// Attributes missing from the table read as empty cells.
func vectorizeRow(s *features.Schema, attrs []features.Attribute, pos []int, row []string) ([]float64, error) {
	raw := make([]any, len(attrs))
	for i, a := range attrs {
		cell := ""
		if p := pos[i]; p >= 0 && p < len(row) {
			cell = row[p]
		}
		v, err := features.ParseValue(a.Type, cell)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		raw[i] = v
	}
	return features.Build(s, raw)
}
