package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errAskFailed = errors.New("question not answered")

func newAskCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Relay a question to the remote index and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			answer := a.ask.Ask(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), answer.Display())
			if answer.Failed {
				return errAskFailed
			}
			return nil
		},
	}
}
