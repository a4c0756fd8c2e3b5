package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"yqhp/calc/pkg/logger"
)

// healthCheck handles GET /health
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: s.session.ID,
	})
}

// evaluate handles POST /api/v1/eval
func (s *Server) evaluate(c *fiber.Ctx) error {
	var req EvalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
		})
	}

	result := s.session.Eval(req.Line)
	if result.HasErrors() {
		logger.Debug("eval reported errors",
			zap.String("line", req.Line),
			zap.Strings("diagnostics", result.Messages()),
		)
	}
	return c.JSON(NewEvalResponse(s.session.ID, result))
}

// listVariables handles GET /api/v1/variables
func (s *Server) listVariables(c *fiber.Ctx) error {
	vars := s.session.Variables()
	return c.JSON(VariablesResponse{
		Variables: vars,
		Count:     len(vars),
		SessionID: s.session.ID,
	})
}

// resetVariables handles DELETE /api/v1/variables
func (s *Server) resetVariables(c *fiber.Ctx) error {
	s.session.Reset()
	return c.JSON(SuccessResponse{
		Success: true,
		Message: "variables cleared",
	})
}
