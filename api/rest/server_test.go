package rest

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/calc/internal/expression"
	"yqhp/calc/internal/session"
	"yqhp/calc/internal/symtab"
)

func newTestServer(opts ...expression.Option) *Server {
	cfg := DefaultConfig()
	cfg.EnableRequestLog = false
	return NewServer(session.New(opts...), cfg)
}

func postEval(t *testing.T, server *Server, line string) EvalResponse {
	t.Helper()
	body, err := json.Marshal(EvalRequest{Line: line})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/eval", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result EvalResponse
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer()

	for _, path := range []string{"/health", "/api/v1/health"} {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		var result HealthResponse
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Equal(t, "healthy", result.Status)
		assert.Equal(t, server.Session().ID, result.SessionID)
	}
}

func TestEvaluate(t *testing.T) {
	server := newTestServer()

	result := postEval(t, server, "x = 2 + 3 * 4")
	assert.Equal(t, int64(20), result.Result)
	assert.Equal(t, "x = 2 + 3 * 4", result.Line)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, server.Session().ID, result.SessionID)

	// Variables persist between requests.
	result = postEval(t, server, "x >= 20")
	assert.Equal(t, int64(1), result.Result)
}

func TestEvaluate_Diagnostics(t *testing.T) {
	server := newTestServer()

	result := postEval(t, server, "10 / 0")
	assert.Equal(t, int64(0), result.Result)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, DiagnosticView{
		Severity: "error",
		Kind:     "arithmetic",
		Position: 5,
		Message:  "divide by zero",
	}, result.Diagnostics[0])

	result = postEval(t, server, "q + 1")
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "unbound", result.Diagnostics[0].Kind)
	assert.Equal(t, "no such variable: q", result.Diagnostics[0].Message)
}

func TestEvaluate_LineTruncated(t *testing.T) {
	server := newTestServer(expression.WithMaxLine(5))

	result := postEval(t, server, "1 + 2 + 3")
	assert.Equal(t, int64(3), result.Result)
}

func TestEvaluate_InvalidBody(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("POST", "/api/v1/eval", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result ErrorResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "invalid_request", result.Error)
}

func TestVariables_ListAndReset(t *testing.T) {
	server := newTestServer()
	postEval(t, server, "b = 2")
	postEval(t, server, "a = b * 5")

	req := httptest.NewRequest("GET", "/api/v1/variables", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var list VariablesResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, []symtab.Variable{{Name: "b", Value: 2}, {Name: "a", Value: 10}}, list.Variables)

	req = httptest.NewRequest("DELETE", "/api/v1/variables", nil)
	resp, err = server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Empty(t, server.Session().Variables())
}

func TestNotFound(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result ErrorResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "error_404", result.Error)
}

func TestCORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableRequestLog = false
	cfg.EnableCORS = true
	server := NewServer(nil, cfg)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
