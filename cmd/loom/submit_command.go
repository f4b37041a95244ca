package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <payload.json>",
		Short: "Deliver a webhook payload to the daemon",
		Long:  "Reads a section delivery payload from the given file (or stdin when the argument is \"-\") and submits it to the running daemon for assembly.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayloadArg(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			accepted, err := client.SubmitWebhook(cmd.Context(), bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("submit webhook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued event %d\n", accepted.EventID)
			return nil
		},
	}
}

func readPayloadArg(stdin io.Reader, arg string) ([]byte, error) {
	if arg == "-" {
		payload, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return payload, nil
	}
	payload, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	return payload, nil
}
