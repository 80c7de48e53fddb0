package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the columns of the job's feature schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		job, err := loadJob(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		s, err := loadSchema(job)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tKIND\tNAME\tDEFINITION")
		for i, c := range s.Columns() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, c.Kind, c.Name, c)
		}
		return tw.Flush()
	},
}
