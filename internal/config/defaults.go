package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the built-in configuration. The distance limits
// match the local window on purpose: a match beyond what the local search
// covers is already suspect.
func DefaultConfig() *Config {
	return &Config{
		LocalWindow:          5,
		MaxPageDistance:      5,
		MaxFuzzyPageDistance: 5,
		FuzzyRatio:           0.3,
		BaseAllowance:        5,
		Color:                true,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# reanchor configuration
# local_window: pages searched around an annotation's original page
# max_page_distance / max_fuzzy_page_distance: acceptance limits for
# relocated matches; the fuzzy limit should not exceed the exact one

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
