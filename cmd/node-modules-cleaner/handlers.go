package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"node-modules-cleaner/internal/config"
	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/dirsize"
	"node-modules-cleaner/internal/scanner"
	"node-modules-cleaner/pkg/utils"
)

var errNotConfirmed = errors.New("deletion not confirmed: set confirm='yes' to proceed")

type handlers struct {
	cfg *config.Config
	log *zap.Logger
}

func (h *handlers) handleScan(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, ScanOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return &mcp.CallToolResult{IsError: true}, ScanOutput{}, errors.New("path is required")
	}

	rep, err := scanner.Scan(ctx, path, h.cfg.ScanOptions(h.log))
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ScanOutput{}, err
	}

	if input.MinSize != "" {
		minSize, err := utils.ParseBytes(input.MinSize)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, ScanOutput{}, fmt.Errorf("invalid minSize: %w", err)
		}
		rep = rep.AtLeast(minSize)
	}
	if input.Sort != "" {
		field, err := scanner.ParseSortField(input.Sort)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, ScanOutput{}, err
		}
		scanner.SortFolders(rep.Folders, field, true)
	}

	return nil, ScanOutput{
		Folders:   rep.Folders,
		TotalSize: rep.TotalSize,
		ScanPath:  rep.ScanPath,
	}, nil
}

func (h *handlers) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{}, errNotConfirmed
	}
	if len(input.Paths) == 0 {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{}, errors.New("paths is required")
	}

	outcomes := deleter.Delete(ctx, input.Paths, h.cfg.DeleteOptions(h.log))
	sum := deleter.Summarize(outcomes, nil)
	h.log.Info("delete tool finished",
		zap.Int("deleted", len(sum.Deleted)),
		zap.Int("failed", len(sum.Failures)))

	// per-path failures are data, not a tool error
	return nil, DeleteOutput{
		Outcomes: outcomes,
		Deleted:  len(sum.Deleted),
		Failed:   len(sum.Failures),
	}, nil
}

func (h *handlers) handleSize(ctx context.Context, req *mcp.CallToolRequest, input SizeInput) (*mcp.CallToolResult, SizeOutput, error) {
	path := strings.TrimSpace(input.Path)
	size, err := dirsize.SizeOf(path, dirsize.Options{Logger: h.log})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SizeOutput{Path: path}, err
	}
	return nil, SizeOutput{Path: path, Size: size, Human: utils.HumanizeBytes(size)}, nil
}
