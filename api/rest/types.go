package rest

import (
	"yqhp/calc/internal/expression"
	"yqhp/calc/internal/session"
	"yqhp/calc/internal/symtab"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse represents a generic success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
}

// EvalRequest is the body of POST /api/v1/eval.
type EvalRequest struct {
	Line string `json:"line"`
}

// DiagnosticView is the wire form of one diagnostic.
type DiagnosticView struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Message  string `json:"message"`
}

// EvalResponse is the result of evaluating one line.
type EvalResponse struct {
	Line        string           `json:"line"`
	Result      int64            `json:"result"`
	Diagnostics []DiagnosticView `json:"diagnostics"`
	SessionID   string           `json:"session_id"`
}

// VariablesResponse lists the variables in definition order.
type VariablesResponse struct {
	Variables []symtab.Variable `json:"variables"`
	Count     int               `json:"count"`
	SessionID string            `json:"session_id"`
}

// NewDiagnosticViews converts diagnostics to their wire form.
func NewDiagnosticViews(diags []expression.Diagnostic) []DiagnosticView {
	views := make([]DiagnosticView, 0, len(diags))
	for _, d := range diags {
		views = append(views, DiagnosticView{
			Severity: d.Severity.String(),
			Kind:     d.Err.Kind.String(),
			Position: d.Err.Position,
			Message:  d.Err.Message,
		})
	}
	return views
}

// NewEvalResponse builds the response for a session result.
func NewEvalResponse(sessionID string, r session.Result) EvalResponse {
	return EvalResponse{
		Line:        r.Line,
		Result:      r.Value,
		Diagnostics: NewDiagnosticViews(r.Diagnostics),
		SessionID:   sessionID,
	}
}
