package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/report"
)

var (
	errAborted       = errors.New("aborted")
	errRemovalFailed = errors.New("some paths could not be removed")
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <path>...",
		Short: "Permanently remove folders",
		Long: heredoc.Doc(`
			Removes every given path recursively. Paths are removed in parallel
			and independently: a failure on one path does not stop the others,
			and nothing is restored. Removal is permanent.

			Exits with status 1 when any path could not be removed.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !a.cfg.DryRun {
				if !confirm(cmd, len(args)) {
					return errAborted
				}
			}

			outcomes := deleter.Delete(cmd.Context(), args, a.cfg.DeleteOptions(a.log))
			if err := report.New(cmd.OutOrStdout(), a.cfg.Format()).Removal(outcomes); err != nil {
				return err
			}
			sum := deleter.Summarize(outcomes, nil)
			a.log.Debug("delete finished",
				zap.Int("deleted", len(sum.Deleted)),
				zap.Int("failed", len(sum.Failures)),
				zap.Bool("dry_run", a.cfg.DryRun))
			if len(sum.Failures) > 0 {
				return fmt.Errorf("%w: %d of %d", errRemovalFailed, len(sum.Failures), len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks on stderr and reads the answer from stdin. Anything but y or
// yes, including EOF, declines.
func confirm(cmd *cobra.Command, n int) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "Permanently delete %d path(s)? (y/N) ", n)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
