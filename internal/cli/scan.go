package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/scan"
	"github.com/mesh-intelligence/compass/pkg/types"
)

func newScanProjectsCmd(a *app) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "scan-projects",
		Short: "List project records",
		Long: "Read every project overview and ledger under projects/ and print one record\n" +
			"per project with derived task counts. Unreadable projects are skipped with a\n" +
			"warning on stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scan.New(a.logger)
			var (
				projects []types.Project
				err      error
			)
			if archived {
				projects, err = s.ScanArchive(a.cfg.Root)
			} else {
				projects, err = s.ScanProjects(a.cfg.Root)
			}
			if err != nil {
				return sysError(err)
			}
			if projects == nil {
				projects = []types.Project{}
			}
			return a.emit(cmd.OutOrStdout(), projects, func(w io.Writer) error {
				return printProjects(w, projects)
			})
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "scan projects-archive/ instead")
	return cmd
}

func printProjects(w io.Writer, projects []types.Project) error {
	if len(projects) == 0 {
		fmt.Fprintln(w, faintStyle.Render("No projects."))
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTASKS\tLAST WORKED")
	for _, p := range projects {
		last := "-"
		if !p.LastWorked.IsZero() {
			last = p.LastWorked.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Status, progress(p.CompletedTasks, p.TotalTasks), last)
	}
	return tw.Flush()
}

func newScanSkillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan-skills",
		Short: "List skill records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			skills, err := scan.New(a.logger).ScanSkills(a.cfg.Root)
			if err != nil {
				return sysError(err)
			}
			if skills == nil {
				skills = []types.Skill{}
			}
			return a.emit(cmd.OutOrStdout(), skills, func(w io.Writer) error {
				if len(skills) == 0 {
					fmt.Fprintln(w, faintStyle.Render("No skills."))
					return nil
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
				for _, s := range skills {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, orDash(s.Description))
				}
				return tw.Flush()
			})
		},
	}
}
