package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema constrains the loaded configuration: counts and distances
// must be non-negative, the fuzzy ratio must lie in [0, 1].
const configSchema = `{
  "type": "object",
  "properties": {
    "local_window":            {"type": "integer", "minimum": 0},
    "max_page_distance":       {"type": "integer", "minimum": 0},
    "max_fuzzy_page_distance": {"type": "integer", "minimum": 0},
    "fuzzy_ratio":             {"type": "number", "minimum": 0, "maximum": 1},
    "base_allowance":          {"type": "integer", "minimum": 0},
    "color":                   {"type": "boolean"}
  },
  "required": [
    "local_window",
    "max_page_distance",
    "max_fuzzy_page_distance",
    "fuzzy_ratio",
    "base_allowance"
  ]
}`

// Validate checks cfg against the config schema. A fuzzy distance limit
// larger than the exact one is legal but pointless, so it only warns.
func Validate(cfg *Config) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.json", bytes.NewReader([]byte(configSchema))); err != nil {
		return fmt.Errorf("failed to load config schema: %w", err)
	}
	schema, err := compiler.Compile("config.json")
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.MaxFuzzyPageDistance > cfg.MaxPageDistance {
		slog.Warn("max_fuzzy_page_distance exceeds max_page_distance; the exact limit gates first",
			"max_fuzzy_page_distance", cfg.MaxFuzzyPageDistance,
			"max_page_distance", cfg.MaxPageDistance,
		)
	}

	return nil
}
