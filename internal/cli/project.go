package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/project"
	"github.com/mesh-intelligence/compass/pkg/types"
)

func printProject(w io.Writer, verb string, p types.Project) error {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("%s %s", verb, p.ID)))
	tw := newTable(w)
	fmt.Fprintf(tw, "name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "status:\t%s\n", p.Status)
	fmt.Fprintf(tw, "tasks:\t%s\n", progress(p.CompletedTasks, p.TotalTasks))
	fmt.Fprintf(tw, "dir:\t%s\n", p.Dir)
	return tw.Flush()
}

func newNewProjectCmd(a *app) *cobra.Command {
	var np project.NewProject
	var tags string
	cmd := &cobra.Command{
		Use:   "new-project <id>",
		Short: "Create a project in PLANNING with an empty ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			np.ID = args[0]
			np.Tags = splitTags(tags)
			p, err := project.Create(a.cfg.Root, np, a.now())
			if err != nil {
				return err
			}
			a.logger.Debug("project created", "project", p.ID, "dir", p.Dir)
			return a.emit(cmd.OutOrStdout(), p, func(w io.Writer) error {
				return printProject(w, "Created", p)
			})
		},
	}
	cmd.Flags().StringVar(&np.Name, "name", "", "display name (default: the id)")
	cmd.Flags().StringVar(&np.Description, "description", "", "one-line description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	return cmd
}

func splitTags(s string) []string {
	tags := []string{}
	for t := range strings.SplitSeq(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func newSetStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a project's status",
		Long:  "Set status to PLANNING, IN_PROGRESS, COMPLETE or ARCHIVED. ARCHIVED moves\nthe project to projects-archive/.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := types.ParseStatus(args[1])
			if err != nil {
				return userError(err)
			}
			p, err := project.SetStatus(a.cfg.Root, args[0], status, a.now())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), p, func(w io.Writer) error {
				return printProject(w, "Updated", p)
			})
		},
	}
}

func newArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Move a project to projects-archive/",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Archive(a.cfg.Root, args[0], a.now())
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), p, func(w io.Writer) error {
				return printProject(w, "Archived", p)
			})
		},
	}
}
