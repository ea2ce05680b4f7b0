package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/state"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// stateReport is the detect-state output.
type stateReport struct {
	types.Decision
	TakenAt  string              `json:"taken_at"`
	Goals    types.GoalsDoc      `json:"goals"`
	Projects int                 `json:"projects"`
	Skills   int                 `json:"skills"`
	Budget   types.BudgetSummary `json:"budget"`
}

func newDetectStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-state",
		Short: "Report the workspace state and the recommended action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := state.NewLoader(a.cfg, a.logger)
			loader.Now = a.now
			snap, err := loader.Load(a.cfg.Root)
			if err != nil {
				return sysError(err)
			}
			d := state.Detect(snap, a.cfg.ActiveWindow)
			a.logger.Debug("state detected", "state", d.State, "action", d.Action.Kind)

			report := stateReport{
				Decision: d,
				TakenAt:  snap.TakenAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
				Goals:    snap.Goals,
				Projects: len(snap.Projects),
				Skills:   len(snap.Skills),
				Budget:   snap.Budget,
			}
			return a.emit(cmd.OutOrStdout(), report, func(w io.Writer) error {
				fmt.Fprintln(w, titleStyle.Render(string(d.State)))
				action := string(d.Action.Kind)
				if d.Action.ProjectID != "" {
					action += " " + d.Action.ProjectID
				}
				fmt.Fprintln(w, "action:", action)
				fmt.Fprintf(w, "projects: %d  skills: %d\n", report.Projects, report.Skills)
				if snap.Budget.OverBudget {
					fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("metadata estimate %d tokens exceeds budget %d", snap.Budget.Total, snap.Budget.Threshold)))
				}
				return nil
			})
		},
	}
}
