package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/history"
	"github.com/mesh-intelligence/compass/internal/project"
)

type initResult struct {
	ConfigDir     string   `json:"config_dir"`
	ConfigWritten bool     `json:"config_written"`
	Root          string   `json:"root"`
	DataDir       string   `json:"data_dir"`
	Created       []string `json:"created"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up a workspace",
		Long: "Create the goals document, the projects and skills collections, the data\n" +
			"directory and a default config.yaml. Existing files are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	written, err := writeConfigIfMissing(a.configDir, a.cfg, a.flags.root != "")
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	boot, err := project.Bootstrap(a.cfg.Root, a.cfg.PlaceholderMarker)
	if err != nil {
		return sysError(fmt.Errorf("bootstrap workspace: %w", err))
	}

	// Opening the journal creates the data directory and its database.
	journal, err := history.Open(a.cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("initialize data dir: %w", err))
	}
	if err := journal.Close(); err != nil {
		return sysError(fmt.Errorf("finalize data dir: %w", err))
	}

	res := initResult{
		ConfigDir:     a.configDir,
		ConfigWritten: written,
		Root:          a.cfg.Root,
		DataDir:       a.cfg.DataDir,
		Created:       boot.Created,
	}
	return a.emit(cmd.OutOrStdout(), res, func(w io.Writer) error {
		fmt.Fprintln(w, okStyle.Render("Workspace initialized at "+res.Root))
		for _, p := range res.Created {
			fmt.Fprintln(w, "  created", p)
		}
		if res.ConfigWritten {
			fmt.Fprintln(w, "  wrote", a.configDir+"/"+configFileExt)
		}
		return nil
	})
}
