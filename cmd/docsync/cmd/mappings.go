package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/docsync/internal/transport/chi"
)

func newMappingsCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mappings <entity-id>",
		Short: "Print the documents recorded for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid entity id %q", args[0])
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := a.mappings.Mappings(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("list mappings: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(chiTransport.NewMappingListResponse(id, rows)); err != nil {
				return fmt.Errorf("write mappings: %w", err)
			}
			return nil
		},
	}
}
