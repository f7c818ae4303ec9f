package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/recyclebin/internal/paths"
	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "RECYCLEBIN"
)

const configHeader = `# recyclebin configuration
#
# backend: sqlite or memory
# data_dir: empty means $(CWD)/.recyclebin-db
# trash.purge_schedule: cron expression used by "recyclebin serve"
# trash.default_purge_interval: never, daily, weekly, monthly, quarterly,
#   yearly, a number of days, or a duration such as "30 days"

`

// defaultConfig returns the configuration written on first run and used
// for keys missing from config.yaml.
func defaultConfig() types.Config {
	return types.Config{
		Backend: types.BackendSQLite,
		RootID:  types.DefaultRootID,
		Trash: types.TrashConfig{
			PurgeSchedule:        "0 3 * * *",
			DefaultPurgeInterval: types.PurgeMonthly.String(),
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: types.MetricsConfig{
			Addr: ":9464",
		},
	}
}

// setDefaults registers every key of cfg with v so that environment
// variables can override keys absent from config.yaml.
func setDefaults(v *viper.Viper, cfg types.Config) {
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("root_id", cfg.RootID)
	v.SetDefault("trash.navigation_mode", cfg.Trash.NavigationMode)
	v.SetDefault("trash.purge_schedule", cfg.Trash.PurgeSchedule)
	v.SetDefault("trash.default_purge_interval", cfg.Trash.DefaultPurgeInterval)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. RECYCLEBIN_* environment
// variables override file values, e.g. RECYCLEBIN_TRASH_NAVIGATION_MODE.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfig()); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, defaultConfig())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates path with cfg when the file does not exist.
// An existing file is left untouched.
func writeConfigIfMissing(path string, cfg types.Config) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
