package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigRoundTripProperty: deserialize(serialize(config)) == config
func TestConfigRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("config round-trip preserves data", prop.ForAll(
		func(maxLine, maxDepth int, power string, level string, seconds int, cors bool) bool {
			cfg := DefaultConfig()
			cfg.Engine.MaxLine = maxLine
			cfg.Engine.MaxDepth = maxDepth
			cfg.Engine.Power = power
			cfg.Logging.Level = level
			cfg.Server.ReadTimeout = time.Duration(seconds) * time.Second
			cfg.Server.EnableCORS = cors

			data, err := cfg.Serialize()
			if err != nil {
				return false
			}
			parsed, err := ParseConfig(data)
			if err != nil {
				return false
			}
			return *parsed == *cfg
		},
		gen.IntRange(1, 4096),
		gen.IntRange(1, 256),
		gen.OneConstOf("exact", "float"),
		gen.OneConstOf("debug", "info", "warn", "error"),
		gen.IntRange(0, 3600),
		gen.Bool(),
	))

	properties.Property("generated engine limits validate", prop.ForAll(
		func(maxLine, maxDepth int) bool {
			cfg := DefaultConfig()
			cfg.Engine.MaxLine = maxLine
			cfg.Engine.MaxName = min(cfg.Engine.MaxName, maxLine)
			cfg.Engine.MaxDepth = maxDepth
			return cfg.Validate() == nil
		},
		gen.IntRange(1, 4096),
		gen.IntRange(0, 256),
	))

	properties.Property("derived depth covers every line", prop.ForAll(
		func(maxLine int) bool {
			cfg := DefaultConfig()
			cfg.Engine.MaxLine = maxLine
			return cfg.Engine.Depth()*2 > maxLine
		},
		gen.IntRange(1, 4096),
	))

	properties.TestingRun(t)
}
