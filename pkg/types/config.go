package types

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Config holds backend selection and the trash, logging and metrics settings.
type Config struct {
	Backend string        `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	RootID  string        `json:"root_id" yaml:"root_id" mapstructure:"root_id"`
	Trash   TrashConfig   `json:"trash" yaml:"trash" mapstructure:"trash"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// TrashConfig configures the trash manager.
type TrashConfig struct {
	// NavigationMode selects tree walks instead of finder queries.
	NavigationMode bool `json:"navigation_mode" yaml:"navigation_mode" mapstructure:"navigation_mode"`

	// PurgeSchedule is a cron expression for the purge sweeper. Empty
	// disables scheduled purging.
	PurgeSchedule string `json:"purge_schedule" yaml:"purge_schedule" mapstructure:"purge_schedule"`

	// DefaultPurgeInterval is stamped on a newly created trash container.
	DefaultPurgeInterval string `json:"default_purge_interval" yaml:"default_purge_interval" mapstructure:"default_purge_interval"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint of the serve command.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultRootID is the root node ID used when none is configured.
const DefaultRootID = "root"

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.RootID == "" {
		return ErrRootIDEmpty
	}
	if c.Trash.DefaultPurgeInterval != "" {
		if _, err := ParsePurgeInterval(c.Trash.DefaultPurgeInterval); err != nil {
			return err
		}
	}
	if c.Trash.PurgeSchedule != "" {
		if _, err := cron.ParseStandard(c.Trash.PurgeSchedule); err != nil {
			return fmt.Errorf("invalid purge schedule %q: %w", c.Trash.PurgeSchedule, err)
		}
	}
	return nil
}
