package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"loom/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List assembled sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			sessions, err := client.Sessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions assembled yet.")
				return nil
			}
			headers := table.Row{"TENANT", "SERIES", "PATIENT", "STATUS", "SECTIONS", "THUMBNAIL", "UPDATED"}
			fmt.Fprintln(out, renderTable(headers, sessionRows(sessions), 5))
			return nil
		},
	}
}

func sessionRows(sessions []*session.Session) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, sess := range sessions {
		thumbnail := "no"
		if sess.ThumbnailImage != "" {
			thumbnail = "yes"
		}
		rows = append(rows, table.Row{
			sess.TenantID,
			sess.SeriesID,
			sess.Patient.Name,
			sess.Status,
			len(sess.Sections),
			thumbnail,
			sess.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}
