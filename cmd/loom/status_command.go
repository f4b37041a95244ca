package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("query daemon status: %w", err)
			}

			colorize := shouldColorize(os.Stdout)
			out := cmd.OutOrStdout()
			for _, line := range renderStatusLines(status, colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
