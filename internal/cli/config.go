package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/compass/internal/paths"
	"github.com/mesh-intelligence/compass/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "COMPASS"

	cfgKeyRoot              = "root"
	cfgKeyDataDir           = "data_dir"
	cfgKeyActiveWindow      = "active_window"
	cfgKeyTokenBudget       = "token_budget"
	cfgKeyPlaceholderMarker = "placeholder_marker"
	cfgKeyLogLevel          = "log_level"
	cfgKeyLock              = "lock"
)

// envKeys may be overridden by COMPASS_<KEY>. root and data_dir are
// resolved by internal/paths, which puts the config file ahead of the
// environment.
var envKeys = []string{
	cfgKeyActiveWindow,
	cfgKeyTokenBudget,
	cfgKeyPlaceholderMarker,
	cfgKeyLogLevel,
	cfgKeyLock,
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Root              string `yaml:"root,omitempty"`
	DataDir           string `yaml:"data_dir,omitempty"`
	ActiveWindow      string `yaml:"active_window"`
	TokenBudget       int    `yaml:"token_budget"`
	PlaceholderMarker string `yaml:"placeholder_marker"`
	LogLevel          string `yaml:"log_level"`
	Lock              bool   `yaml:"lock"`
}

// loadConfig reads config.yaml from configDir, applies environment
// overrides and flags, and validates the result. A missing config.yaml is
// not an error.
func loadConfig(configDir string, flags rootFlags) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyActiveWindow, types.DefaultActiveWindow.String())
	v.SetDefault(cfgKeyTokenBudget, types.DefaultTokenBudget)
	v.SetDefault(cfgKeyPlaceholderMarker, types.DefaultPlaceholderMarker)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyLock, true)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, userError(fmt.Errorf("read config: %w", err))
		}
	}

	root, err := paths.ResolveRoot(flags.root, v.GetString(cfgKeyRoot))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve root: %w", err))
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir), root)
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cfg := types.Config{
		Root:              root,
		DataDir:           dataDir,
		ActiveWindow:      v.GetDuration(cfgKeyActiveWindow),
		TokenBudget:       v.GetInt(cfgKeyTokenBudget),
		PlaceholderMarker: v.GetString(cfgKeyPlaceholderMarker),
		LogLevel:          strings.ToLower(v.GetString(cfgKeyLogLevel)),
		Lock:              v.GetBool(cfgKeyLock),
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("config: %w", err))
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. The root is only pinned when pinRoot is set. Returns whether a
// file was written.
func writeConfigIfMissing(configDir string, cfg types.Config, pinRoot bool) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	out := configFile{
		ActiveWindow:      cfg.ActiveWindow.String(),
		TokenBudget:       cfg.TokenBudget,
		PlaceholderMarker: cfg.PlaceholderMarker,
		LogLevel:          types.DefaultLogLevel,
		Lock:              cfg.Lock,
	}
	if pinRoot {
		out.Root = cfg.Root
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte("# compass configuration\n"), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
