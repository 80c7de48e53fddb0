package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the job file and exit non-zero on errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		job, err := loadJob(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if _, err := loadSchema(job); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", cfgPath)
		return nil
	},
}
