// Package mcp exposes the four memory tools over the Model Context
// Protocol, translating between mcp-go's wire types and the typed
// requests internal/dispatch expects.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/vecfs-dev/vecfs/internal/dispatch"
)

// Server wraps an MCPServer bound to a Dispatcher.
type Server struct {
	mcp    *mcpserver.MCPServer
	disp   *dispatch.Dispatcher
	logger *slog.Logger
}

// NewServer creates an MCP server exposing search, memorize, feedback
// and delete, delegating each to disp.
func NewServer(disp *dispatch.Dispatcher, logger *slog.Logger) *Server {
	s := &Server{disp: disp, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"vecfs",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildSearchTool(), s.handleSearch)
	mcpSrv.AddTool(buildMemorizeTool(), s.handleMemorize)
	mcpSrv.AddTool(buildFeedbackTool(), s.handleFeedback)
	mcpSrv.AddTool(buildDeleteTool(), s.handleDelete)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with
// mcpserver.ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleSearch is exported for direct testing without the mcp-go
// transport layer.
func (s *Server) HandleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearch(ctx, req)
}

// HandleMemorize is exported for direct testing.
func (s *Server) HandleMemorize(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleMemorize(ctx, req)
}

// HandleFeedback is exported for direct testing.
func (s *Server) HandleFeedback(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleFeedback(ctx, req)
}

// HandleDelete is exported for direct testing.
func (s *Server) HandleDelete(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDelete(ctx, req)
}

func buildSearchTool() mcpgo.Tool {
	return mcpgo.NewTool("search",
		mcpgo.WithDescription("Search stored memories by semantic similarity to a query."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("Text to search for"),
		),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of results (default: 5)"),
		),
	)
}

func buildMemorizeTool() mcpgo.Tool {
	return mcpgo.NewTool("memorize",
		mcpgo.WithDescription("Store a piece of text as a memory, replacing any existing entry with the same id."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Stable identifier for this memory"),
		),
		mcpgo.WithString("text",
			mcpgo.Required(),
			mcpgo.Description("Text content to remember"),
		),
		mcpgo.WithObject("metadata",
			mcpgo.Description("Additional free-form metadata to store alongside the text"),
		),
	)
}

func buildFeedbackTool() mcpgo.Tool {
	return mcpgo.NewTool("feedback",
		mcpgo.WithDescription("Adjust the reinforcement score of a memory, biasing future ranking toward or away from it."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Identifier of the memory to adjust"),
		),
		mcpgo.WithNumber("scoreAdjustment",
			mcpgo.Required(),
			mcpgo.Description("Signed amount to add to the memory's score"),
		),
	)
}

func buildDeleteTool() mcpgo.Tool {
	return mcpgo.NewTool("delete",
		mcpgo.WithDescription("Permanently remove a memory by id."),
		mcpgo.WithString("id",
			mcpgo.Required(),
			mcpgo.Description("Identifier of the memory to remove"),
		),
	)
}

func (s *Server) handleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	parsed, err := dispatch.ParseSearch(req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}

	hits, err := s.disp.Search(ctx, parsed)
	if err != nil {
		return errorResult(err), nil
	}

	s.logger.Info("mcp: search", "query", parsed.Query, "hits", len(hits))
	return toolResultJSON(map[string]any{"results": hits})
}

func (s *Server) handleMemorize(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	parsed, err := dispatch.ParseMemorize(req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}

	msg, err := s.disp.Memorize(ctx, parsed)
	if err != nil {
		return errorResult(err), nil
	}

	s.logger.Info("mcp: memorize", "id", parsed.ID)
	return mcpgo.NewToolResultText(msg), nil
}

func (s *Server) handleFeedback(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	parsed, err := dispatch.ParseFeedback(req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}

	msg, err := s.disp.Feedback(ctx, parsed)
	if err != nil {
		return errorResult(err), nil
	}

	s.logger.Info("mcp: feedback", "id", parsed.ID, "adjustment", parsed.ScoreAdjustment)
	return mcpgo.NewToolResultText(msg), nil
}

func (s *Server) handleDelete(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	parsed, err := dispatch.ParseDelete(req.GetArguments())
	if err != nil {
		return errorResult(err), nil
	}

	msg, err := s.disp.Delete(ctx, parsed)
	if err != nil {
		return errorResult(err), nil
	}

	s.logger.Info("mcp: delete", "id", parsed.ID)
	return mcpgo.NewToolResultText(msg), nil
}

// errorResult maps a dispatch.Error onto an mcp-go tool error result,
// prefixed with its kind so the calling agent can distinguish a bad
// request from a backend failure.
func errorResult(err error) *mcpgo.CallToolResult {
	if dErr, ok := err.(*dispatch.Error); ok {
		return mcpgo.NewToolResultErrorf("%s: %s", dErr.Kind, dErr.Msg)
	}
	return mcpgo.NewToolResultErrorf("%s", err.Error())
}

func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}
