// Package main implements the node-modules-cleaner command.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/fang"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"node-modules-cleaner/internal/config"
	"node-modules-cleaner/internal/logging"
	"node-modules-cleaner/internal/tui"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
}

func main() {
	a := &app{v: viper.New()}
	if err := fang.Execute(
		context.Background(),
		newRootCmd(a),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node-modules-cleaner [path]",
		Short: "Find, size and delete node_modules folders",
		Long: heredoc.Doc(`
			node-modules-cleaner finds every node_modules folder below a path,
			reports how much disk space each one uses and removes the ones you pick.

			Without a subcommand it opens an interactive list when stdout is a
			terminal and prints a scan report otherwise.

			Settings are read from flags, NMC_* environment variables and
			$HOME/.config/node-modules-cleaner/config.yaml, in that order.
		`),
		Example: heredoc.Doc(`
			node-modules-cleaner ~/code
			node-modules-cleaner scan ~/code --output json
			node-modules-cleaner delete ~/code/old/node_modules --yes
		`),
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := pathArg(args)
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return a.runScan(cmd, root, scanFlags{})
			}
			return tui.Run(root, a.cfg.ScanOptions(a.log), a.cfg.DeleteOptions(a.log))
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.config/node-modules-cleaner/config.yaml)")
	pf.String(config.KeyMarker, "", "directory name to look for (default node_modules)")
	pf.Int(config.KeyConcurrency, 0, "folders sized or removed at once (0 = number of CPUs)")
	pf.Int(config.KeyMaxDepth, 0, "maximum traversal depth below the root (0 = unlimited)")
	pf.StringSliceP(config.KeyExclude, "e", nil, "gitignore-style patterns to skip, relative to the root")
	pf.Bool(config.KeyDryRun, false, "report what would be removed without removing anything")
	pf.StringP(config.KeyOutput, "o", "", "output format: table, json or yaml")
	pf.Bool(config.KeyDebug, false, "enable debug logging on stderr")

	cmd.AddCommand(
		newScanCmd(a),
		newDeleteCmd(a),
		newSizeCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup merges flags, environment and config file, then builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.SetDefaults(a.v)
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	used, err := config.Read(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.Must(cfg.Debug)
	if used != "" {
		a.log.Debug("using config file", zap.String("path", used))
	}
	return nil
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// statusf prints a transient status line to stderr when it is a terminal.
func statusf(format string, args ...any) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

var version = buildVersion()

// buildVersion prefers the module version and falls back to the short VCS
// revision, marked -dirty for modified trees.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	switch {
	case rev == "":
		return "dev"
	case dirty:
		return fmt.Sprintf("%.7s-dirty", rev)
	default:
		return fmt.Sprintf("%.7s", rev)
	}
}
