// Package mcp exposes password generation and scoring as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/history"
	"github.com/forest6511/passforge/pkg/policy"
)

// maxConcurrentGenerations bounds password_generate calls running at once.
const maxConcurrentGenerations = 5

// ServerName is reported to MCP clients.
const ServerName = "passforge"

// Server is the passforge MCP server.
type Server struct {
	server    *mcp.Server
	generator *generator.Generator
	defaults  policy.Policy
	history   *history.Store
	logger    *slog.Logger
	genSem    chan struct{}
}

// ServerOptions contains configuration options for the MCP server.
type ServerOptions struct {
	// Generator produces passwords. Required.
	Generator *generator.Generator

	// Policy is applied to password_generate fields the client leaves unset.
	Policy policy.Policy

	// History records reports of generated passwords when non-nil.
	History *history.Store

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// Version is reported to clients.
	Version string
}

// NewServer creates a new MCP server instance.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil || opts.Generator == nil {
		return nil, errors.New("mcp server requires a generator")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:    mcpServer,
		generator: opts.Generator,
		defaults:  opts.Policy,
		history:   opts.History,
		logger:    logger,
		genSem:    make(chan struct{}, maxConcurrentGenerations),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "password_generate",
		Description: "Generate one or more passwords. Modes: freeform (length and character classes configurable), segmented (xxxxxx-xxxxxx-xxxxxx with one digit), mixed (16 characters with upper, lower and digit). Each password comes with its entropy, score and strength label.",
	}, s.handlePasswordGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "password_score",
		Description: "Score a password: entropy in bits, a 0-100 score, a Weak/Medium/Strong label and the weak patterns found. The password is not stored or logged.",
	}, s.handlePasswordScore)
}

// Run serves MCP over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", "transport", "stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
