// Package mcp provides MCP (Model Context Protocol) tool adapters for Lens.
// It exposes the dashboard surfaces as tools so MCP-compatible agents can
// read the forecast console the same way the dashboard does, fallbacks
// included.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sorsai/lens"
)

// Server wraps the MCP server with Lens tools.
type Server struct {
	client    *lens.Client
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with Lens tools registered.
func NewServer(client *lens.Client) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"lens",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "lens_filters", Description: "Show or replace the dashboard filter scope"},
		{Name: "lens_chart", Description: "Read the demand-vs-prediction chart for the current scope"},
		{Name: "lens_metrics", Description: "Read the aggregate KPI tiles for the current scope"},
		{Name: "lens_storycards", Description: "Read the narrative story cards for the current scope"},
		{Name: "lens_explain", Description: "Explain one forecast point (sku, store, date)"},
		{Name: "lens_ask", Description: "Ask the forecast copilot a question within the current scope"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "lens_filters":
		return s.handleFilters(ctx, args)
	case "lens_chart":
		return s.handleChart(ctx, args)
	case "lens_metrics":
		return s.handleMetrics(ctx, args)
	case "lens_storycards":
		return s.handleStoryCards(ctx, args)
	case "lens_explain":
		return s.handleExplain(ctx, args)
	case "lens_ask":
		return s.handleAsk(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	// lens_filters
	s.mcpServer.AddTool(mcp.NewTool("lens_filters",
		mcp.WithDescription("Show or replace the dashboard filter scope. With no arguments returns the current scope; with any argument set, replaces the scope as a whole and re-evaluates every dashboard surface."),
		mcp.WithString("start",
			mcp.Description("Start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end",
			mcp.Description("End date (YYYY-MM-DD)"),
		),
		mcp.WithString("sku",
			mcp.Description("SKU scope"),
		),
		mcp.WithString("store",
			mcp.Description("Store scope"),
		),
		mcp.WithArray("signals",
			mcp.Description("Signal toggles to enable (weather, promotions, socialTrends, anomalies, highUncertainty, biggestSwings, aiOverrides); all others are disabled"),
			mcp.WithStringItems(),
		),
	), s.mcpHandleFilters)

	// lens_chart
	s.mcpServer.AddTool(mcp.NewTool("lens_chart",
		mcp.WithDescription("Read the demand-vs-prediction series for the current scope. Degrades to a fixed demo series when the console is unreachable."),
	), s.mcpHandleChart)

	// lens_metrics
	s.mcpServer.AddTool(mcp.NewTool("lens_metrics",
		mcp.WithDescription("Read the aggregate KPI tiles for the current scope."),
	), s.mcpHandleMetrics)

	// lens_storycards
	s.mcpServer.AddTool(mcp.NewTool("lens_storycards",
		mcp.WithDescription("Read the narrative story cards for the current scope. Degrades to a single stable-forecasts card when the console is unreachable."),
	), s.mcpHandleStoryCards)

	// lens_explain
	s.mcpServer.AddTool(mcp.NewTool("lens_explain",
		mcp.WithDescription("Explain one forecast point. Explanations are cached for the session; a failed lookup returns a synthetic error record until retried."),
		mcp.WithString("sku",
			mcp.Description("SKU identifier"),
			mcp.Required(),
		),
		mcp.WithString("store",
			mcp.Description("Store identifier"),
			mcp.Required(),
		),
		mcp.WithString("date",
			mcp.Description("Forecast date (YYYY-MM-DD)"),
			mcp.Required(),
		),
		mcp.WithBoolean("retry",
			mcp.Description("Invalidate any cached record first and fetch again"),
		),
	), s.mcpHandleExplain)

	// lens_ask
	s.mcpServer.AddTool(mcp.NewTool("lens_ask",
		mcp.WithDescription("Ask the forecast copilot a question within the current scope. Falls back to a local responder and then a generic acknowledgment when the console fails; never errors on a degraded console."),
		mcp.WithString("question",
			mcp.Description("The question to ask"),
			mcp.Required(),
		),
	), s.mcpHandleAsk)
}

// MCP handlers that wrap internal handlers

func (s *Server) mcpHandleFilters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleFilters(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleChart(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleMetrics(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleStoryCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleStoryCards(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleExplain(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func (s *Server) mcpHandleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.handleAsk(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return toMCPResult(result), nil
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

// Internal handlers

func (s *Server) handleFilters(ctx context.Context, args map[string]any) (*ToolResult, error) {
	if len(args) > 0 {
		f := s.client.Filters()
		if v, ok := args["start"].(string); ok {
			f.StartDate = v
		}
		if v, ok := args["end"].(string); ok {
			f.EndDate = v
		}
		if v, ok := args["sku"].(string); ok {
			f.SKU = v
		}
		if v, ok := args["store"].(string); ok {
			f.Store = v
		}
		if signals := toStringSlice(args["signals"]); signals != nil {
			applySignals(&f, signals)
		}
		s.client.SetFilters(ctx, f)
	}

	return &ToolResult{Content: formatFilters(s.client.Filters(), s.client.FilterEpoch())}, nil
}

func (s *Server) handleChart(ctx context.Context, args map[string]any) (*ToolResult, error) {
	snap := s.client.RefreshChart(ctx)

	var sb strings.Builder
	writeFallbackNote(&sb, snap.IsFallback)
	sb.WriteString(fmt.Sprintf("Forecast vs actual (%d points):\n", len(snap.Data)))
	for _, p := range snap.Data {
		sb.WriteString(fmt.Sprintf("  %s  predicted %.1f  actual %.1f\n", p.ForecastDate, p.Predicted, p.Actual))
	}
	return &ToolResult{Content: sb.String()}, nil
}

func (s *Server) handleMetrics(ctx context.Context, args map[string]any) (*ToolResult, error) {
	snap := s.client.RefreshMetrics(ctx)

	var sb strings.Builder
	writeFallbackNote(&sb, snap.IsFallback)
	if len(snap.Data) == 0 {
		sb.WriteString("No metrics available.")
		return &ToolResult{Content: sb.String()}, nil
	}
	for _, m := range snap.Data {
		sb.WriteString(fmt.Sprintf("  %s: %s", m.Title, m.Value))
		if m.Trend != "" {
			sb.WriteString(" (" + m.Trend + ")")
		}
		sb.WriteString("\n")
	}
	return &ToolResult{Content: sb.String()}, nil
}

func (s *Server) handleStoryCards(ctx context.Context, args map[string]any) (*ToolResult, error) {
	snap := s.client.RefreshStoryCards(ctx)

	var sb strings.Builder
	writeFallbackNote(&sb, snap.IsFallback)
	for _, c := range snap.Data {
		sb.WriteString(fmt.Sprintf("[%s] %s (confidence: %.2f)\n", c.Type, c.Title, c.Confidence))
		sb.WriteString(fmt.Sprintf("    %s\n", c.Body))
	}
	return &ToolResult{Content: sb.String()}, nil
}

func (s *Server) handleExplain(ctx context.Context, args map[string]any) (*ToolResult, error) {
	sku, _ := args["sku"].(string)
	store, _ := args["store"].(string)
	date, _ := args["date"].(string)
	if sku == "" || store == "" || date == "" {
		return &ToolResult{Content: "sku, store and date are required", IsError: true}, nil
	}

	ec := lens.ExplainContext{SKUID: sku, StoreID: store, ForecastDate: date}
	if retry, ok := args["retry"].(bool); ok && retry {
		s.client.InvalidateExplanation(ec)
	}

	rec, err := s.client.Explain(ctx, ec)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("explain failed: %v", err), IsError: true}, nil
	}

	return &ToolResult{Content: formatExplanation(rec)}, nil
}

func (s *Server) handleAsk(ctx context.Context, args map[string]any) (*ToolResult, error) {
	question, ok := args["question"].(string)
	if !ok || question == "" {
		return &ToolResult{Content: "question is required", IsError: true}, nil
	}

	reply, err := s.client.Ask(ctx, question)
	if err != nil {
		return &ToolResult{Content: fmt.Sprintf("ask failed: %v", err), IsError: true}, nil
	}

	var sb strings.Builder
	sb.WriteString(reply.Content)
	if reply.Metadata != nil {
		for _, sug := range reply.Metadata.Suggestions {
			sb.WriteString(fmt.Sprintf("\n  suggestion: %s (%s)", sug.Label, sug.Action.Type))
		}
	}
	return &ToolResult{Content: sb.String()}, nil
}

// Formatting functions

func formatFilters(f lens.FilterState, epoch uint64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scope (epoch %d):\n", epoch))
	sb.WriteString(fmt.Sprintf("  Dates: %s .. %s\n", f.StartDate, f.EndDate))
	sb.WriteString(fmt.Sprintf("  SKU: %s\n", orAll(f.SKU)))
	sb.WriteString(fmt.Sprintf("  Store: %s\n", orAll(f.Store)))
	sb.WriteString(fmt.Sprintf("  Signals: %s\n", strings.Join(f.Signals(), ", ")))
	return sb.String()
}

func formatExplanation(rec lens.ExplanationRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s @ %s on %s\n", rec.SKUID, rec.StoreID, rec.ForecastDate))
	sb.WriteString(fmt.Sprintf("  %s\n", rec.NarrativeExplanation))
	sb.WriteString(fmt.Sprintf("  Top influencer: %s\n", rec.TopInfluencer))
	if rec.ConfidenceScore != nil {
		sb.WriteString(fmt.Sprintf("  Confidence: %.2f\n", *rec.ConfidenceScore))
	}
	sb.WriteString(fmt.Sprintf("  Type: %s", rec.ExplanationType))
	return sb.String()
}

func writeFallbackNote(sb *strings.Builder, fallback bool) {
	if fallback {
		sb.WriteString("NOTE: console unavailable, showing fallback data.\n")
	}
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

// applySignals resets the toggles and enables only the named ones. Unknown
// names are ignored.
func applySignals(f *lens.FilterState, signals []string) {
	f.Weather = false
	f.Promotions = false
	f.SocialTrends = false
	f.Anomalies = false
	f.HighUncertainty = false
	f.BiggestSwings = false
	f.AIOverrides = false

	for _, sig := range signals {
		switch sig {
		case "weather":
			f.Weather = true
		case "promotions":
			f.Promotions = true
		case "socialTrends":
			f.SocialTrends = true
		case "anomalies":
			f.Anomalies = true
		case "highUncertainty":
			f.HighUncertainty = true
		case "biggestSwings":
			f.BiggestSwings = true
		case "aiOverrides":
			f.AIOverrides = true
		}
	}
}

// toStringSlice converts various array types to []string.
// Handles []any, []string, and nil.
func toStringSlice(v any) []string {
	if v == nil {
		return nil
	}

	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}
