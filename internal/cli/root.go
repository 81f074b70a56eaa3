// Package cli implements the sitedocs command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/entrypoint"
	"github.com/mrlokans/sitedocs/internal/logging"
)

const databaseFlag = "db"

// app carries state shared by every subcommand of one invocation.
type app struct {
	version    string
	cfg        *config.Config
	closeLog   func()
	loadConfig func() *config.Config
}

// Execute runs the command line and exits non-zero on failure.
func Execute(version string) {
	if err := New(version).Execute(); err != nil {
		os.Exit(1)
	}
}

// New builds the root command. With no subcommand it serves HTTP.
func New(version string) *cobra.Command {
	return newRoot(&app{version: version, loadConfig: config.NewConfig})
}

func newRoot(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitedocs [sub-command]",
		Short: "Site documentation dashboard",
		Long: `sitedocs shows a site's documentation video and PDF on a dashboard page
and lets administrators choose which uploaded video is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
		PersistentPreRunE: a.preRun,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
	}

	cmd.PersistentFlags().String(databaseFlag, "", "database path, overrides DATABASE_PATH")

	cmd.AddCommand(
		newServeCommand(a),
		newShowCommand(a),
		newSetVideoCommand(a),
		newAddMediaCommand(a),
		newPruneMediaCommand(a),
		newChangesCommand(a),
		newCreateAdminCommand(a),
		newVersionCommand(a),
	)
	return cmd
}

func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	a.cfg = a.loadConfig()
	if db, _ := cmd.Flags().GetString(databaseFlag); db != "" {
		a.cfg.Database.Path = db
	}

	closeLog, err := logging.Setup(a.cfg.Log)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	a.closeLog = closeLog
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

// withCore opens the core services for the duration of fn.
func (a *app) withCore(fn func(core *entrypoint.Core) error) error {
	core, err := entrypoint.NewCore(a.cfg)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(core)
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitedocs %s\n", a.version)
		},
	}
}
