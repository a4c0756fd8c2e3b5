// Package mcp exposes the calculator as MCP tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"yqhp/calc/internal/session"
	"yqhp/calc/pkg/logger"
)

const (
	// ServerName is reported to MCP clients during initialization.
	ServerName = "calc"

	ToolEvaluate  = "evaluate"
	ToolVariables = "variables"
	ToolReset     = "reset"
)

// Server serves one calculator session over MCP.
type Server struct {
	session *session.Session
	mcp     *server.MCPServer
}

// NewServer creates an MCP server whose tools share sess.
func NewServer(sess *session.Session, version string) *Server {
	if sess == nil {
		sess = session.New()
	}
	s := &Server{
		session: sess,
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool(ToolEvaluate,
		mcp.WithDescription("Evaluate one calculator line. Operators apply left to right without precedence; "+
			"'name = expr' assigns a variable; comparisons yield 0 or 1."),
		mcp.WithString("line", mcp.Required(), mcp.Description("the line to evaluate, e.g. \"x = 2 + 3\"")),
	), s.handleEvaluate)

	s.mcp.AddTool(mcp.NewTool(ToolVariables,
		mcp.WithDescription("List the session's variables in definition order."),
	), s.handleVariables)

	s.mcp.AddTool(mcp.NewTool(ToolReset,
		mcp.WithDescription("Remove every variable from the session."),
	), s.handleReset)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Session returns the session shared by the tools.
func (s *Server) Session() *session.Session {
	return s.session
}

// ServeStdio serves the tools on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleEvaluate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.session.Eval(line)
	logger.Debug("mcp evaluate",
		zap.String("line", line),
		zap.Int64("result", result.Value),
	)

	diags := make([]any, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		diags = append(diags, map[string]any{
			"severity": d.Severity.String(),
			"kind":     d.Err.Kind.String(),
			"position": int64(d.Err.Position),
			"message":  d.Err.Message,
		})
	}
	return mcp.NewToolResultText(encode(map[string]any{
		"line":        line,
		"result":      result.Value,
		"diagnostics": diags,
	})), nil
}

func (s *Server) handleVariables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vars := s.session.Variables()
	list := make([]any, 0, len(vars))
	for _, v := range vars {
		list = append(list, map[string]any{"name": v.Name, "value": v.Value})
	}
	return mcp.NewToolResultText(encode(map[string]any{
		"variables": list,
		"count":     int64(len(vars)),
	})), nil
}

func (s *Server) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Reset()
	return mcp.NewToolResultText("variables cleared"), nil
}

func encode(v any) string {
	return oj.JSON(v, &ojg.Options{Sort: true})
}
