package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the mapping table (SQL drivers) and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			// newApp migrates before returning.
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(cmd.OutOrStdout(), "mapping store ready (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
