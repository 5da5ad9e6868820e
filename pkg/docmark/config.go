package docmark

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/render"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
)

// Lookup policies accepted by Config.LookupPolicy.
const (
	LookupFalsy = "falsy"
	LookupNil   = "nil"
)

// Config contains all configuration options for rendering templates
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// MaxRenderDepth limits how deeply repetitions may nest
	MaxRenderDepth int `yaml:"max_render_depth"`
	// NormalizeQuotes turns typographic quotes in comments into ASCII quotes
	// before they are parsed. Word replaces quotes as the author types.
	NormalizeQuotes bool `yaml:"normalize_quotes"`
	// LookupPolicy decides which values count as missing during a key
	// lookup: "falsy" (nil and false) or "nil" (nil only).
	LookupPolicy string `yaml:"lookup_policy"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
)

func init() {
	globalConfig = ConfigFromEnvironment()
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		MaxRenderDepth:  render.DefaultMaxDepth,
		NormalizeQuotes: true,
		LookupPolicy:    LookupFalsy,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCMARK_LOG_LEVEL
	if val := os.Getenv("DOCMARK_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	// DOCMARK_MAX_RENDER_DEPTH
	if val := os.Getenv("DOCMARK_MAX_RENDER_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxRenderDepth = depth
		}
	}

	// DOCMARK_NORMALIZE_QUOTES
	if val := os.Getenv("DOCMARK_NORMALIZE_QUOTES"); val != "" {
		config.NormalizeQuotes = parseBool(val)
	}

	// DOCMARK_LOOKUP_POLICY
	if val := os.Getenv("DOCMARK_LOOKUP_POLICY"); val != "" {
		config.LookupPolicy = strings.ToLower(val)
	}

	return config
}

// LoadConfigFile reads a YAML configuration file. Keys missing from the
// file keep their default values.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxRenderDepth <= 0 {
		return errors.New("max render depth must be positive")
	}

	if c.LookupPolicy != LookupFalsy && c.LookupPolicy != LookupNil {
		return errors.New("invalid lookup policy: " + c.LookupPolicy)
	}

	return nil
}

// MissPolicy returns the scope policy selected by LookupPolicy.
func (c *Config) MissPolicy() scope.MissPolicy {
	if c.LookupPolicy == LookupNil {
		return scope.MissOnNil
	}
	return scope.MissOnFalsy
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back.
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
