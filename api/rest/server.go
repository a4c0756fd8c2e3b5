// Package rest provides the HTTP front end of the calculator.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"yqhp/calc/internal/session"
)

// Config holds the configuration for the REST API server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// EnableCORS enables Cross-Origin Resource Sharing.
	EnableCORS bool

	// EnableRequestLog writes one access line per request.
	EnableRequestLog bool
}

// DefaultConfig returns a default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:          ":8080",
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EnableRequestLog: true,
	}
}

// Server represents the REST API server. All requests share one session.
type Server struct {
	app     *fiber.App
	session *session.Session
	config  *Config
}

// NewServer creates a new REST API server.
func NewServer(sess *session.Session, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if sess == nil {
		sess = session.New()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		ErrorHandler:          customErrorHandler,
		AppName:               "calc",
		DisableStartupMessage: true,
	})

	server := &Server{
		app:     app,
		session: sess,
		config:  config,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
	}))

	if s.config.EnableRequestLog {
		s.app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	if s.config.EnableCORS {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       86400,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.healthCheck)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.healthCheck)
	api.Post("/eval", s.evaluate)
	api.Get("/variables", s.listVariables)
	api.Delete("/variables", s.resetVariables)
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.app.Listen(s.config.Address)
}

// StartWithContext serves until ctx is done, then shuts down.
func (s *Server) StartWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case <-ctx.Done():
		return s.ShutdownWithTimeout(5 * time.Second)
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ShutdownWithTimeout gracefully shuts down the server with a timeout.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Session returns the session shared by all requests.
func (s *Server) Session() *session.Session {
	return s.session
}

// customErrorHandler handles errors returned by handlers.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   fmt.Sprintf("error_%d", code),
		Message: message,
	})
}
