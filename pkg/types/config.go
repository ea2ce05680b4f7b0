package types

import (
	"errors"
	"time"
)

// Config holds the engine settings loaded from config.yaml and flags.
type Config struct {
	Root              string        `json:"root" yaml:"root"`
	DataDir           string        `json:"data_dir" yaml:"data_dir"`
	ActiveWindow      time.Duration `json:"active_window" yaml:"active_window"`
	TokenBudget       int           `json:"token_budget" yaml:"token_budget"`
	PlaceholderMarker string        `json:"placeholder_marker" yaml:"placeholder_marker"`
	LogLevel          string        `json:"log_level" yaml:"log_level"`
	Lock              bool          `json:"lock" yaml:"lock"`
}

// Defaults.
const (
	DefaultActiveWindow      = 7 * 24 * time.Hour
	DefaultTokenBudget       = 5000
	DefaultPlaceholderMarker = "<!-- compass:placeholder -->"
	DefaultLogLevel          = "warn"
)

// Config validation errors.
var (
	ErrRootEmpty           = errors.New("root must not be empty")
	ErrActiveWindowInvalid = errors.New("active window must be positive")
	ErrTokenBudgetInvalid  = errors.New("token budget must be positive")
	ErrPlaceholderEmpty    = errors.New("placeholder marker must not be empty")
	ErrLogLevelUnknown     = errors.New("unknown log level")
)

// knownLogLevels lists the levels Validate accepts.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns a Config rooted at root with every other field set
// to its default.
func DefaultConfig(root string) Config {
	return Config{
		Root:              root,
		ActiveWindow:      DefaultActiveWindow,
		TokenBudget:       DefaultTokenBudget,
		PlaceholderMarker: DefaultPlaceholderMarker,
		LogLevel:          DefaultLogLevel,
		Lock:              true,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Root == "" {
		return ErrRootEmpty
	}
	if c.ActiveWindow <= 0 {
		return ErrActiveWindowInvalid
	}
	if c.TokenBudget <= 0 {
		return ErrTokenBudgetInvalid
	}
	if c.PlaceholderMarker == "" {
		return ErrPlaceholderEmpty
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
