package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/history"
	"github.com/mesh-intelligence/compass/internal/ledger"
	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/internal/project"
	"github.com/mesh-intelligence/compass/internal/scan"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// findProject resolves an active project by identifier.
func (a *app) findProject(id string) (types.Project, error) {
	return scan.New(a.logger).FindProject(paths.NewLayout(a.cfg.Root).Projects(), id)
}

func newParseLedgerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-ledger <project-id>",
		Short: "Print a project's task ledger grouped by section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.findProject(args[0])
			if err != nil {
				return err
			}
			path, err := ledger.ResolveDocument(p.Dir)
			if err != nil {
				return err
			}
			l, err := ledger.ParseFile(path)
			if err != nil {
				return err
			}
			report := ledgerReport{Ledger: l, Total: l.Total(), Completed: l.Completed()}
			return a.emit(cmd.OutOrStdout(), report, func(w io.Writer) error {
				return printLedger(w, l)
			})
		},
	}
}

// ledgerReport adds the totals to the parse-ledger JSON output.
type ledgerReport struct {
	*types.Ledger
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

func printLedger(w io.Writer, l *types.Ledger) error {
	fmt.Fprintln(w, faintStyle.Render(l.Path))
	if l.Total() == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	for _, s := range l.Sections {
		heading := "(before first section)"
		if !s.Implicit {
			heading = fmt.Sprintf("Section %d", s.Ordinal)
			if s.Name != "" {
				heading += ": " + s.Name
			}
		}
		fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(heading), progress(s.Completed(), len(s.Tasks)))
		for _, t := range s.Tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "  %3d [%s] %s\n", t.Position, mark, t.Text)
		}
	}
	fmt.Fprintln(w, "total:", progress(l.Completed(), l.Total()))
	return nil
}

type completeFlags struct {
	project   string
	all       bool
	section   int
	positions string
	noLock    bool
}

func newCompleteCmd(a *app) *cobra.Command {
	var f completeFlags
	cmd := &cobra.Command{
		Use:   "complete --project <id> (--all | --section <n> | --positions <spec>)",
		Short: "Mark tasks complete in one atomic write",
		Long: "Mark every selected task complete. Already-complete tasks are left alone and\n" +
			"a selection that is already fully complete writes nothing. Positions are\n" +
			"1-based across the whole ledger, for example \"3,7,9\" or \"1-5,8\".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := ledger.ParseSelection(f.all, f.section, cmd.Flags().Changed("section"), f.positions)
			if err != nil {
				return userError(err)
			}
			return a.runComplete(cmd, f, sel)
		},
	}
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project identifier (required)")
	cmd.Flags().BoolVar(&f.all, "all", false, "complete every task")
	cmd.Flags().IntVar(&f.section, "section", 0, "complete every task in section N")
	cmd.Flags().StringVar(&f.positions, "positions", "", "complete tasks at these global positions")
	cmd.Flags().BoolVar(&f.noLock, "no-lock", false, "skip the advisory ledger lock")
	_ = cmd.MarkFlagRequired("project")
	cmd.MarkFlagsMutuallyExclusive("all", "section", "positions")
	cmd.MarkFlagsOneRequired("all", "section", "positions")
	return cmd
}

func (a *app) runComplete(cmd *cobra.Command, f completeFlags, sel types.Selection) error {
	p, err := a.findProject(f.project)
	if err != nil {
		return err
	}

	completer := ledger.NewCompleter(a.logger)
	completer.Lock = a.cfg.Lock && !f.noLock

	res, err := completer.Complete(p.Dir, sel)
	if res == nil {
		return err
	}
	if !res.NoOp() {
		a.afterCompletion(p.ID, res)
	}

	w := cmd.OutOrStdout()
	if printErr := a.emit(w, res, func(w io.Writer) error {
		return printCompletion(w, p.ID, res)
	}); printErr != nil {
		return errors.Join(err, printErr)
	}
	if err != nil {
		return err
	}
	if res.Mismatch != nil {
		return userError(fmt.Errorf("%s: %w (expected %d/%d, found %d/%d)", res.Path, res.Mismatch,
			res.Mismatch.ExpectedCompleted, res.Mismatch.ExpectedTotal,
			res.Mismatch.ActualCompleted, res.Mismatch.ActualTotal))
	}
	return nil
}

// afterCompletion stamps the project and journals the event. Neither step
// can undo the ledger write, so failures are only logged.
func (a *app) afterCompletion(projectID string, res *types.MutationResult) {
	now := a.now()
	if _, err := project.Touch(a.cfg.Root, projectID, now); err != nil {
		a.logger.Warn("update last_worked", "project", projectID, "error", err)
	}

	journal, err := history.Open(a.cfg.DataDir)
	if err != nil {
		a.logger.Warn("open history journal", "error", err)
		return
	}
	defer journal.Close()
	if _, err := journal.Record(projectID, res, now); err != nil {
		a.logger.Warn("record history", "project", projectID, "error", err)
	}
}

func printCompletion(w io.Writer, projectID string, res *types.MutationResult) error {
	if res.NoOp() {
		fmt.Fprintf(w, "%s: %s already complete, nothing written (%s)\n",
			projectID, res.Selection, progress(res.After, res.Total))
		return nil
	}
	line := fmt.Sprintf("%s: completed %d task(s) in %s, %s -> %s",
		projectID, len(res.Flipped), res.Selection,
		progress(res.Before, res.Total), progress(res.After, res.Total))
	if res.Mismatch != nil {
		fmt.Fprintln(w, warnStyle.Render(line+" (re-read did not match)"))
		return nil
	}
	fmt.Fprintln(w, okStyle.Render(line))
	return nil
}
