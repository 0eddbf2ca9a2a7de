package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"node-modules-cleaner/internal/deleter"
	"node-modules-cleaner/internal/scanner"
)

type (
	// ScanInput contains parameters for scanning a directory tree.
	ScanInput struct {
		Path    string `json:"path" jsonschema:"Absolute path of the directory to scan"`
		Sort    string `json:"sort,omitempty" jsonschema:"Sort by size, name or path (default: discovery order)"`
		MinSize string `json:"minSize,omitempty" jsonschema:"Hide folders smaller than this, e.g. 50MB"`
	}

	// ScanOutput contains every matched folder and the total size.
	ScanOutput struct {
		Folders   []scanner.Folder `json:"folders"`
		TotalSize uint64           `json:"total_size"`
		ScanPath  string           `json:"scan_path"`
	}

	// DeleteInput contains parameters for removing folders.
	DeleteInput struct {
		Paths   []string `json:"paths" jsonschema:"Absolute paths to remove recursively"`
		Confirm string   `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// DeleteOutput contains one outcome per requested path.
	DeleteOutput struct {
		Outcomes []deleter.Outcome `json:"outcomes"`
		Deleted  int               `json:"deleted"`
		Failed   int               `json:"failed"`
	}

	// SizeInput contains parameters for sizing one path.
	SizeInput struct {
		Path string `json:"path" jsonschema:"Absolute path of a folder or file"`
	}

	// SizeOutput contains the size of one path.
	SizeOutput struct {
		Path  string `json:"path"`
		Size  uint64 `json:"size"`
		Human string `json:"human"`
	}
)

func registerTools(server *mcp.Server, h *handlers) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan",
		Description: "Find node_modules folders below a path. Returns each folder with its size in bytes and parent project name, plus the total.",
	}, h.handleScan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete",
		Description: "Permanently remove folders recursively. Each path succeeds or fails independently. Requires confirm='yes'.",
	}, h.handleDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "size",
		Description: "Total size in bytes of everything inside a folder, or the size of a file.",
	}, h.handleSize)
}
