package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		projectID string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded completions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := history.Open(a.cfg.DataDir)
			if err != nil {
				return sysError(fmt.Errorf("open history journal: %w", err))
			}
			defer journal.Close()

			events, err := journal.List(projectID, limit)
			if err != nil {
				return sysError(err)
			}
			return a.emit(cmd.OutOrStdout(), events, func(w io.Writer) error {
				if len(events) == 0 {
					fmt.Fprintln(w, faintStyle.Render("No history."))
					return nil
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "WHEN\tPROJECT\tSELECTION\tFLIPPED\tCOMPLETED")
				for _, ev := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						ev.RecordedAt.Local().Format("2006-01-02 15:04"), ev.ProjectID, ev.Selection,
						joinInts(ev.Flipped), progress(ev.After, ev.Total))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "only this project")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events (0 for all)")
	return cmd
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
