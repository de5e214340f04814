// Package config loads the tool configuration: search window size, page
// distance limits and fuzzy matching defaults. Values come from built-in
// defaults, an optional YAML file and REANCHOR_-prefixed environment
// variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the tunable constants of the transfer. The distance limits
// and the window size are deliberately config-only, not CLI flags.
type Config struct {
	// LocalWindow is the half-width, in pages, of the page window searched
	// before falling back to the whole document.
	LocalWindow int `mapstructure:"local_window" yaml:"local_window" json:"local_window"`

	// MaxPageDistance is the largest accepted page distance for an exact
	// match. MaxFuzzyPageDistance applies to fuzzy matches and should be
	// at most MaxPageDistance.
	MaxPageDistance      int `mapstructure:"max_page_distance" yaml:"max_page_distance" json:"max_page_distance"`
	MaxFuzzyPageDistance int `mapstructure:"max_fuzzy_page_distance" yaml:"max_fuzzy_page_distance" json:"max_fuzzy_page_distance"`

	// FuzzyRatio and BaseAllowance are the default edit-distance budget
	// parameters, overridable per run on the command line.
	FuzzyRatio    float64 `mapstructure:"fuzzy_ratio" yaml:"fuzzy_ratio" json:"fuzzy_ratio"`
	BaseAllowance int     `mapstructure:"base_allowance" yaml:"base_allowance" json:"base_allowance"`

	// Color enables ANSI colors in the report output.
	Color bool `mapstructure:"color" yaml:"color" json:"color"`
}

// Manager loads and holds the configuration for one process.
type Manager struct {
	config *Config
}

// NewManager sets up viper and loads the configuration. cfgFile may be
// empty, in which case config.yaml is looked up in the working directory
// and ~/.reanchor.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{}

	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	m.config = cfg

	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("local_window", defaults.LocalWindow)
	viper.SetDefault("max_page_distance", defaults.MaxPageDistance)
	viper.SetDefault("max_fuzzy_page_distance", defaults.MaxFuzzyPageDistance)
	viper.SetDefault("fuzzy_ratio", defaults.FuzzyRatio)
	viper.SetDefault("base_allowance", defaults.BaseAllowance)
	viper.SetDefault("color", defaults.Color)

	viper.SetEnvPrefix("REANCHOR")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.reanchor")
	}

	// The config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (m *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (m *Manager) Get() *Config {
	return m.config
}
