// Package cli implements the compass command-line interface.
//
// Every command accepts --json for machine-readable output. Exit codes:
// 0 on success (including a completion that changed nothing), 1 for
// resolution and validation failures, 2 for I/O failures.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/pkg/types"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	root      string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one command invocation. It is filled by the
// root command's PersistentPreRunE.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewRootCmd creates the top-level "compass" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "compass",
		Short: "Project and task state for a learning assistant",
		Long: "Compass reads a workspace of goals, projects and skills, works out what\n" +
			"state it is in, and completes checklist tasks in bulk.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.root, "root", "", "workspace root (default: current directory)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: <root>/"+paths.DefaultDataDirName+")")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug detail to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newScanProjectsCmd(a),
		newScanSkillsCmd(a),
		newDetectStateCmd(a),
		newParseLedgerCmd(a),
		newCompleteCmd(a),
		newBudgetCmd(a),
		newNewProjectCmd(a),
		newSetStatusCmd(a),
		newArchiveCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code. Errors
// are printed to errOut.
func run(root *cobra.Command, args []string, errOut io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir, a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	a.logger.Debug("configuration loaded", "config_dir", configDir, "root", cfg.Root, "data_dir", cfg.DataDir)
	return nil
}

// newLogger returns a text logger on w at the named level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
