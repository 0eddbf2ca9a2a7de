package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"node-modules-cleaner/internal/dirsize"
	"node-modules-cleaner/internal/report"
)

func newSizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "size <path>",
		Short: "Print the total size of a folder or file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := dirsize.SizeOf(args[0], dirsize.Options{Logger: a.log})
			if err != nil {
				return fmt.Errorf("size failed: %w", err)
			}
			return report.New(cmd.OutOrStdout(), a.cfg.Format()).Size(args[0], size)
		},
	}
}
