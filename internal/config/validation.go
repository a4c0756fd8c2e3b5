package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"yqhp/calc/internal/expression"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration values.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// Validate validates the entire configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = nil

	v.validateEngineConfig(&cfg.Engine)
	v.validateLoggingConfig(&cfg.Logging)
	v.validateServerConfig(&cfg.Server)
	v.validateBenchConfig(&cfg.Bench)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateEngineConfig(cfg *EngineConfig) {
	if cfg.MaxLine <= 0 {
		v.addError("engine.max_line", "max line must be positive")
	}
	if cfg.MaxName <= 0 {
		v.addError("engine.max_name", "max name must be positive")
	} else if cfg.MaxLine > 0 && cfg.MaxName > cfg.MaxLine {
		v.addError("engine.max_name", "max name must not exceed max line")
	}
	if cfg.MaxDepth < 0 {
		v.addError("engine.max_depth", "max depth must not be negative")
	}
	if _, err := expression.ParsePowerMode(cfg.Power); err != nil {
		v.addError("engine.power", err.Error())
	}
}

func (v *Validator) validateLoggingConfig(cfg *LoggingConfig) {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if cfg.Level == "" {
		v.addError("logging.level", "log level is required")
	} else if !validLevels[strings.ToLower(cfg.Level)] {
		v.addError("logging.level", fmt.Sprintf("invalid log level '%s', must be one of: debug, info, warn, error", cfg.Level))
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "console":
	default:
		v.addError("logging.format", fmt.Sprintf("invalid log format '%s', must be one of: json, console", cfg.Format))
	}

	switch strings.ToLower(cfg.Output) {
	case "stdout", "stderr":
	case "file", "both":
		if cfg.FilePath == "" {
			v.addError("logging.file_path", "file path is required when output is "+cfg.Output)
		}
	default:
		v.addError("logging.output", fmt.Sprintf("invalid log output '%s', must be one of: stdout, stderr, file, both", cfg.Output))
	}

	if cfg.MaxSize < 0 {
		v.addError("logging.max_size", "max size must be non-negative")
	}
	if cfg.MaxBackups < 0 {
		v.addError("logging.max_backups", "max backups must be non-negative")
	}
	if cfg.MaxAge < 0 {
		v.addError("logging.max_age", "max age must be non-negative")
	}
}

func (v *Validator) validateServerConfig(cfg *ServerConfig) {
	if cfg.Address == "" {
		v.addError("server.address", "address is required")
	} else if !isValidAddress(cfg.Address) {
		v.addError("server.address", "invalid address format, expected host:port or :port")
	}

	if cfg.ReadTimeout < 0 {
		v.addError("server.read_timeout", "read timeout must be non-negative")
	} else if cfg.ReadTimeout > 0 && cfg.ReadTimeout < time.Second {
		v.addError("server.read_timeout", "read timeout should be at least 1 second")
	}
	if cfg.WriteTimeout < 0 {
		v.addError("server.write_timeout", "write timeout must be non-negative")
	} else if cfg.WriteTimeout > 0 && cfg.WriteTimeout < time.Second {
		v.addError("server.write_timeout", "write timeout should be at least 1 second")
	}
}

func (v *Validator) validateBenchConfig(cfg *BenchConfig) {
	if cfg.Iterations <= 0 {
		v.addError("bench.iterations", "iterations must be positive")
	}
}

// isValidAddress checks for host:port or :port with a numeric or named port.
func isValidAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if _, err := net.LookupPort("tcp", port); err != nil {
		return false
	}
	if host == "" || net.ParseIP(host) != nil {
		return true
	}
	return isValidHostname(host)
}

// isValidHostname performs basic hostname validation.
func isValidHostname(hostname string) bool {
	if len(hostname) > 253 {
		return false
	}
	for _, label := range strings.Split(hostname, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !isAlphanumeric(c) && c != '-' {
				return false
			}
		}
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	return NewValidator().Validate(c)
}

// LoadAndValidate loads configuration from a file and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
