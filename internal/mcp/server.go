// Package mcp exposes CodeSentry analysis as MCP tools over stdio, so MCP
// clients can analyze C files and projects on demand.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/discovery"
	"github.com/imyousuf/CodeSentry/internal/report"
)

const (
	serverName = "codesentry"

	// Tool names.
	AnalyzeFileTool    = "analyze_file"
	AnalyzeProjectTool = "analyze_project"
)

// Config holds what the tools need to run an analysis.
type Config struct {
	Runner    *analysis.Runner
	Discovery discovery.Options
	// Rules describes the active detectors for SARIF output.
	Rules   []report.Rule
	Version string
	Logger  hclog.Logger
}

// Server wraps an MCP server with the CodeSentry tools registered.
type Server struct {
	cfg Config
	log hclog.Logger
	mcp *server.MCPServer
}

// NewServer creates a server and registers its tools.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		cfg: cfg,
		log: log.Named("mcp"),
		mcp: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(true),
			server.WithLogging(),
		),
	}

	s.mcp.AddTool(mcplib.NewTool(AnalyzeFileTool,
		mcplib.WithDescription("Runs the CodeSentry detectors over one C source or header file and returns its findings and metrics."),
		mcplib.WithString("path",
			mcplib.Description("Path of the file to analyze (absolute or relative to the server's working directory)"),
			mcplib.Required(),
		),
		mcplib.WithString("format",
			mcplib.Description("Output format: text or json (default: json)"),
		),
	), s.handleAnalyzeFile)

	s.mcp.AddTool(mcplib.NewTool(AnalyzeProjectTool,
		mcplib.WithDescription("Discovers the C files under a directory, analyzes them and returns a project report with per-file findings, totals and the largest files."),
		mcplib.WithString("path",
			mcplib.Description("Directory to analyze (default: current directory)"),
		),
		mcplib.WithString("format",
			mcplib.Description("Output format: text, json, yaml, toml or sarif (default: json)"),
		),
	), s.handleAnalyzeProject)

	return s
}

// ServeStdio serves requests on stdin/stdout until stdin closes or the
// process receives SIGINT/SIGTERM.
func (s *Server) ServeStdio() error {
	s.log.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAnalyzeFile(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	args := request.Params.Arguments
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return errorResult("path must be a non-empty string"), nil
	}
	format, err := formatArg(args, []report.Format{report.Text, report.JSON})
	if err != nil {
		return errorResult(err.Error()), nil
	}

	s.log.Debug("tool call", "tool", AnalyzeFileTool, "path", path)
	res, err := s.cfg.Runner.AnalyzeFile(ctx, path)
	if err != nil {
		return errorResult(fmt.Sprintf("Cannot analyze file: %v", err)), nil
	}

	var buf bytes.Buffer
	if format == report.Text {
		report.WriteFileText(&buf, res, false)
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
	}
	return textResult(buf.String()), nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	args := request.Params.Arguments
	root, _ := args["path"].(string)
	if root == "" {
		root = "."
	}
	format, err := formatArg(args, report.Formats)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	s.log.Debug("tool call", "tool", AnalyzeProjectTool, "path", root)
	files, err := discovery.Discover(ctx, root, s.cfg.Discovery)
	if err != nil {
		return errorResult(fmt.Sprintf("Cannot analyze %s: %v", root, err)), nil
	}
	pr, err := s.cfg.Runner.AnalyzeProject(ctx, files)
	if err != nil {
		return nil, err
	}
	pr.Root, _ = filepath.Abs(root)

	var buf bytes.Buffer
	if err := report.Write(&buf, pr, report.Options{Format: format, Rules: s.cfg.Rules}); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return textResult(buf.String()), nil
}

// formatArg reads the optional "format" argument, defaulting to JSON.
func formatArg(args map[string]interface{}, allowed []report.Format) (report.Format, error) {
	raw, _ := args["format"].(string)
	if raw == "" {
		return report.JSON, nil
	}
	f, err := report.ParseFormat(raw)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", fmt.Errorf("format %q is not supported by this tool", raw)
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func errorResult(msg string) *mcplib.CallToolResult {
	res := textResult(msg)
	res.IsError = true
	return res
}
