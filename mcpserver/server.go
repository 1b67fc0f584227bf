package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/odelin/execbox/config"
	"github.com/odelin/execbox/metrics"
	"github.com/odelin/execbox/sandbox"
	"github.com/odelin/execbox/weather"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config        *config.Config
	logger        *zap.Logger
	executor      sandbox.CodeExecutor
	weatherClient *weather.Client
	mcpServer     *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, executor sandbox.CodeExecutor, weatherClient *weather.Client) (*MCPServer, error) {
	s := &MCPServer{
		config:        cfg,
		logger:        logger,
		executor:      executor,
		weatherClient: weatherClient,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("executor.interpreter", s.config.Executor.Interpreter),
		zap.Int("executor.timeout_default_sec", s.config.Executor.TimeoutDefaultSec),
		zap.Int("executor.timeout_min_sec", s.config.Executor.TimeoutMinSec),
		zap.Int("executor.timeout_max_sec", s.config.Executor.TimeoutMaxSec),
		zap.Int("executor.max_output_kb", s.config.Executor.MaxOutputKB),
		zap.String("weather.base_url", s.config.Weather.BaseURL),
		zap.Bool("metrics.enabled", s.config.Metrics.Enabled),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("execbox", "1.0.0")

	s.registerExecuteCodeTool()
	s.registerGetWeatherTool()

	return s, nil
}

// executeCodeResult is the JSON payload returned by the execute_code tool.
type executeCodeResult struct {
	Success         bool   `json:"success"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	ExitCode        int    `json:"exit_code"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Error           string `json:"error,omitempty"`
	Help            string `json:"help,omitempty"`
}

// registerExecuteCodeTool registers the execute_code tool
func (s *MCPServer) registerExecuteCodeTool() {
	tool := mcp.Tool{
		Name:        "execute_code",
		Description: "Execute a short-lived code snippet in an external interpreter process and return its captured output",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
				"timeout_seconds": map[string]any{
					"type":        "integer",
					"description": "Wall-clock execution budget in seconds",
					"minimum":     s.config.Executor.TimeoutMinSec,
					"maximum":     s.config.Executor.TimeoutMaxSec,
					"default":     s.config.Executor.TimeoutDefaultSec,
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteCode)
}

// registerGetWeatherTool registers the get_weather tool
func (s *MCPServer) registerGetWeatherTool() {
	tool := mcp.Tool{
		Name:        "get_weather",
		Description: "Fetch current conditions and a daily forecast for a coordinate",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"latitude": map[string]any{
					"type":        "number",
					"description": "Latitude in decimal degrees",
					"minimum":     -90,
					"maximum":     90,
				},
				"longitude": map[string]any{
					"type":        "number",
					"description": "Longitude in decimal degrees",
					"minimum":     -180,
					"maximum":     180,
				},
				"days": map[string]any{
					"type":        "integer",
					"description": "Number of forecast days",
					"minimum":     1,
					"maximum":     7,
					"default":     3,
				},
			},
			Required: []string{"latitude", "longitude"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleGetWeather)
}

// handleExecuteCode handles the execute_code tool. Every outcome of the
// executor becomes a JSON payload; the MCP error flag is reserved for
// sandbox-side failures, so the calling agent can tell "the sandbox failed"
// apart from "the executed code failed".
func (s *MCPServer) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callID := uuid.NewString()
	start := time.Now()

	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	timeout := request.GetInt("timeout_seconds", s.config.Executor.TimeoutDefaultSec)
	timeout = s.clampTimeout(timeout)

	s.logger.Info("code execution requested",
		zap.String("call_id", callID),
		zap.Int("timeout_sec", timeout),
		zap.Int("code_len", len(code)))

	outcome := s.executor.Execute(ctx, sandbox.Request{
		Code:       code,
		TimeoutSec: timeout,
	})

	status := "success"
	if !outcome.Success {
		status = string(outcome.Failure)
	}
	metrics.ExecutionsTotal.WithLabelValues(status).Inc()
	if outcome.Truncated {
		metrics.OutputTruncatedTotal.Inc()
	}
	metrics.ObserveToolCall("execute_code", status, time.Since(start))

	s.logger.Info("code execution completed",
		zap.String("call_id", callID),
		zap.Bool("success", outcome.Success),
		zap.String("failure", string(outcome.Failure)),
		zap.Int("exit_code", outcome.ExitCode),
		zap.Int64("elapsed_ms", outcome.ElapsedMs))

	payload := executeCodeResult{
		Success:         outcome.Success,
		Stdout:          outcome.Stdout,
		Stderr:          outcome.Stderr,
		ExitCode:        outcome.ExitCode,
		ExecutionTimeMs: outcome.ElapsedMs,
		Error:           outcome.Message,
		Help:            outcome.Help,
	}

	return jsonResult(payload, isSandboxFailure(outcome.Failure))
}

// isSandboxFailure reports whether a failure kind is an infrastructure
// fault rather than a property of the submitted code or its budget.
func isSandboxFailure(kind sandbox.FailureKind) bool {
	switch kind {
	case sandbox.FailureInterpreterNotFound, sandbox.FailureProcess, sandbox.FailureUnexpected:
		return true
	default:
		return false
	}
}

// clampTimeout forces the requested budget into the configured window.
func (s *MCPServer) clampTimeout(timeout int) int {
	if timeout < s.config.Executor.TimeoutMinSec {
		return s.config.Executor.TimeoutMinSec
	}
	if timeout > s.config.Executor.TimeoutMaxSec {
		return s.config.Executor.TimeoutMaxSec
	}
	return timeout
}

// handleGetWeather handles the get_weather tool
func (s *MCPServer) handleGetWeather(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callID := uuid.NewString()
	start := time.Now()

	latitude, err := request.RequireFloat("latitude")
	if err != nil {
		return nil, fmt.Errorf("latitude parameter is required: %w", err)
	}

	longitude, err := request.RequireFloat("longitude")
	if err != nil {
		return nil, fmt.Errorf("longitude parameter is required: %w", err)
	}

	days := request.GetInt("days", 3)

	s.logger.Info("forecast requested",
		zap.String("call_id", callID),
		zap.Float64("latitude", latitude),
		zap.Float64("longitude", longitude),
		zap.Int("days", days))

	forecast, err := s.weatherClient.Forecast(ctx, weather.Query{
		Latitude:  latitude,
		Longitude: longitude,
		Days:      days,
	})
	if err != nil {
		metrics.ObserveToolCall("get_weather", "error", time.Since(start))
		s.logger.Error("forecast fetch failed",
			zap.String("call_id", callID),
			zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Forecast failed: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	metrics.ObserveToolCall("get_weather", "success", time.Since(start))

	return jsonResult(forecast, false)
}

// jsonResult marshals a payload into an MCP text content result.
func jsonResult(payload any, isError bool) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
		IsError: isError,
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
