package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/calc/internal/expression"
	"yqhp/calc/internal/symtab"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 120, cfg.Engine.MaxLine)
	assert.Equal(t, symtab.MaxNameLen, cfg.Engine.MaxName)
	assert.Equal(t, 0, cfg.Engine.MaxDepth)
	assert.Equal(t, 61, cfg.Engine.Depth())
	assert.Equal(t, "exact", cfg.Engine.Power)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Bench.Iterations)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "calc.yaml")
	configContent := `
engine:
  max_line: 80
  power: float
server:
  address: "127.0.0.1:9000"
  read_timeout: 60s
  enable_cors: true
logging:
  level: debug
  format: json
bench:
  iterations: 50
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Engine.MaxLine)
	assert.Equal(t, "float", cfg.Engine.Power)
	// Unset keys keep their defaults; the depth bound follows max_line.
	assert.Equal(t, 0, cfg.Engine.MaxDepth)
	assert.Equal(t, 41, cfg.Engine.Depth())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.EnableCORS)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 50, cfg.Bench.Iterations)
}

func TestLoadFromNonExistentFile(t *testing.T) {
	cfg, err := LoadFromFile("/nonexistent/path/calc.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CALC_ENGINE_MAX_LINE", "64")
	t.Setenv("CALC_ENGINE_POWER", "float")
	t.Setenv("CALC_SERVER_ADDRESS", ":7070")
	t.Setenv("CALC_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("CALC_SERVER_ENABLE_CORS", "true")
	t.Setenv("CALC_LOG_LEVEL", "error")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Engine.MaxLine)
	assert.Equal(t, "float", cfg.Engine.Power)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.EnableCORS)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestEnvPrefix(t *testing.T) {
	t.Setenv("CALC_ENGINE_MAX_DEPTH", "4")
	t.Setenv("MYCALC_ENGINE_MAX_DEPTH", "8")

	cfg, err := NewLoader().WithEnvPrefix("MYCALC_").Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.MaxDepth)
}

func TestCmdOverrides(t *testing.T) {
	cmdArgs := map[string]string{
		"engine.max_depth":     "8",
		"server.address":       ":6060",
		"server.write_timeout": "90s",
		"logging.level":        "debug",
		"bench.iterations":     "10",
	}

	cfg, err := NewLoader().WithCmdArgs(cmdArgs).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.MaxDepth)
	assert.Equal(t, ":6060", cfg.Server.Address)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Bench.Iterations)
}

func TestPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "calc.yaml")
	configContent := `
engine:
  max_line: 100
  max_depth: 10
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("CALC_ENGINE_MAX_LINE", "90")
	t.Setenv("CALC_LOG_LEVEL", "info")

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		WithCmdArgs(map[string]string{"engine.max_line": "70"}).
		Load()
	require.NoError(t, err)

	// Command line wins over env and file.
	assert.Equal(t, 70, cfg.Engine.MaxLine)
	// Env wins over file.
	assert.Equal(t, "info", cfg.Logging.Level)
	// File wins over defaults.
	assert.Equal(t, 10, cfg.Engine.MaxDepth)
}

func TestSerializeAndParse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Power = "float"
	cfg.Server.Address = ":5000"

	data, err := cfg.Serialize()
	require.NoError(t, err)

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "calc.yaml")
	invalidContent := `
engine:
  max_line: 80
  invalid yaml content here
    - broken
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidContent), 0644))

	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("CALC_SERVER_READ_TIMEOUT", "invalid-duration")

	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestInvalidCmdPath(t *testing.T) {
	tests := []map[string]string{
		{"nonexistent.path": "value"},
		{"engine": "value"},
		{"engine.max_line.extra": "1"},
		{"engine.max_line": "lots"},
	}
	for _, args := range tests {
		_, err := NewLoader().WithCmdArgs(args).Load()
		assert.Error(t, err, "%v", args)
	}
}

func TestEvaluatorOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.MaxLine = 5
	cfg.Engine.Power = "float"

	opts, err := cfg.EvaluatorOptions()
	require.NoError(t, err)

	e := expression.NewEvaluator(nil, opts...)
	assert.Equal(t, 5, e.MaxLine())
	assert.Equal(t, int64(3), e.Evaluate("1 + 2 + 3"))

	cfg.Engine.Power = "approximate"
	_, err = cfg.EvaluatorOptions()
	assert.Error(t, err)
}

func TestEvaluatorOptions_Depth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.MaxLine = 200

	opts, err := cfg.EvaluatorOptions()
	require.NoError(t, err)
	e := expression.NewEvaluator(nil, opts...)
	assert.Equal(t, int64(7), e.Evaluate(strings.Repeat("(", 90)+"7"+strings.Repeat(")", 90)))

	cfg.Engine.MaxDepth = 2
	opts, err = cfg.EvaluatorOptions()
	require.NoError(t, err)
	c := expression.NewCollector()
	e = expression.NewEvaluator(nil, append(opts, expression.WithReporter(c))...)
	assert.Equal(t, int64(0), e.Evaluate("(((1)))"))
	assert.NotEmpty(t, c.Errors())
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = "/tmp/calc.log"

	lc := cfg.LoggerConfig()
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "file", lc.Output)
	assert.Equal(t, "/tmp/calc.log", lc.FilePath)
	assert.Equal(t, 100, lc.MaxSize)
}
