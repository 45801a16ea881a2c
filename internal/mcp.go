package internal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the highlight pipeline as MCP tools so AI assistants
// can analyze videos and read cached results.
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"clipgenius-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("analyze_video",
		mcp.WithDescription("Analyze a YouTube video's transcript and return 5-8 notable moments with timestamps and reasons. Results are cached per video, so repeat calls for the same video are free and fast."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL (watch, youtu.be, or embed form)"),
			mcp.Required(),
		),
	), s.handleAnalyze)

	s.mcpServer.AddTool(mcp.NewTool("get_highlights",
		mcp.WithDescription("Get previously computed highlights for a video by its 11-character video ID. Fails if the video has not been analyzed yet; use analyze_video first."),
		mcp.WithString("video_id",
			mcp.Description("YouTube video ID"),
			mcp.Required(),
		),
	), s.handleGetHighlights)
}

// handleAnalyze implements the analyze_video tool
func (s *MCPServer) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	result, err := s.app.Analyze(ctx, url)
	if err != nil {
		if classified, ok := AsPipelineError(err); ok {
			return mcp.NewToolResultError(classified.Message), nil
		}
		return mcp.NewToolResultErrorFromErr("analysis error", err), nil
	}

	return toolResultFromRecord(result.Record, result.Cached)
}

// handleGetHighlights implements the get_highlights tool
func (s *MCPServer) handleGetHighlights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoID, err := request.RequireString("video_id")
	if err != nil {
		return mcp.NewToolResultError("video_id parameter is required and must be a string"), nil
	}

	record, err := s.app.Results(ctx, videoID)
	if err != nil {
		if classified, ok := AsPipelineError(err); ok {
			return mcp.NewToolResultError(classified.Message), nil
		}
		return mcp.NewToolResultErrorFromErr("lookup error", err), nil
	}

	return toolResultFromRecord(record, true)
}

func toolResultFromRecord(record *AnalysisRecord, cached bool) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(RecordToResponse(record, cached), "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
