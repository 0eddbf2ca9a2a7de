package main

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"node-modules-cleaner/internal/report"
	"node-modules-cleaner/internal/scanner"
	"node-modules-cleaner/pkg/utils"
)

type scanFlags struct {
	sort    string
	asc     bool
	minSize string
}

func newScanCmd(a *app) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List node_modules folders and their sizes",
		Long: heredoc.Doc(`
			Walks path (default: current directory) and lists every node_modules
			folder with its size and the project it belongs to.

			Hidden directories and anything inside a node_modules folder are not
			searched. Sizes include everything inside each folder.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, pathArg(args), f)
		},
	}
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort by size, name or path (default discovery order)")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort ascending")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "hide folders smaller than this (e.g. 50MB)")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, root string, f scanFlags) error {
	var minSize uint64
	if f.minSize != "" {
		n, err := utils.ParseBytes(f.minSize)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}
		minSize = n
	}
	var sortBy scanner.SortField
	if f.sort != "" {
		field, err := scanner.ParseSortField(f.sort)
		if err != nil {
			return err
		}
		sortBy = field
	}

	format := a.cfg.Format()
	if format == report.FormatTable {
		statusf("Scanning %s...\r", root)
	}
	rep, err := scanner.Scan(cmd.Context(), root, a.cfg.ScanOptions(a.log))
	if format == report.FormatTable {
		statusf("\033[2K")
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if minSize > 0 {
		rep = rep.AtLeast(minSize)
	}
	if sortBy != "" {
		scanner.SortFolders(rep.Folders, sortBy, !f.asc)
	}
	return report.New(cmd.OutOrStdout(), format).Scan(rep)
}
