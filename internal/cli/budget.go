package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/budget"
	"github.com/mesh-intelligence/compass/internal/scan"
)

func newBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Estimate the token cost of loading all session metadata",
		Long: "Sum a per-record estimate over every project and skill description.\n" +
			"Exceeding the budget is advisory and never fails the command.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scan.New(a.logger)
			projects, err := s.ScanProjects(a.cfg.Root)
			if err != nil {
				return sysError(err)
			}
			skills, err := s.ScanSkills(a.cfg.Root)
			if err != nil {
				return sysError(err)
			}
			est := budget.New(a.cfg.TokenBudget).Estimate(budget.Items(projects, skills))
			if est.OverBudget {
				a.logger.Warn("session metadata over token budget", "total", est.Total, "threshold", est.Threshold)
			}
			return a.emit(cmd.OutOrStdout(), est, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintln(tw, "RECORD\tTOKENS")
				for _, c := range est.PerRecord {
					fmt.Fprintf(tw, "%s\t%d\n", c.ID, c.Tokens)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				line := fmt.Sprintf("total %d of %d", est.Total, est.Threshold)
				if est.OverBudget {
					fmt.Fprintln(w, warnStyle.Render(line+" (over budget)"))
				} else {
					fmt.Fprintln(w, okStyle.Render(line))
				}
				return nil
			})
		},
	}
}
