// Package config loads tally's settings.
//
// Values are layered, later layers winning:
//
//  1. Defaults from defaultConfig
//  2. An optional YAML file (--config, or TALLY_CONFIG)
//  3. TALLY_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable tally reads.
const EnvPrefix = "TALLY_"

// ConfigPathEnvVar names a YAML config file when --config is not given.
const ConfigPathEnvVar = "TALLY_CONFIG"

// Config is the full set of runtime settings.
type Config struct {
	CurriculumDir string    `koanf:"curriculum_dir" validate:"required"`
	Database      string    `koanf:"database" validate:"required"`
	OwnerID       string    `koanf:"owner_id"`
	SaveRetries   int       `koanf:"save_retries" validate:"min=0,max=10"`
	Log           LogConfig `koanf:"log"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

func defaultConfig() Config {
	return Config{
		CurriculumDir: "curriculum",
		Database:      "tally.db",
		SaveRetries:   3,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config. path may be empty, in which case TALLY_CONFIG is
// consulted; a missing file named by either is an error, no file at all
// is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envKeys maps environment names, prefix stripped and lowercased, to
// config paths. Variables not listed here are ignored.
var envKeys = map[string]string{
	"curriculum_dir": "curriculum_dir",
	"database":       "database",
	"owner_id":       "owner_id",
	"save_retries":   "save_retries",
	"log_level":      "log.level",
	"log_format":     "log.format",
}

// envTransformFunc turns TALLY_LOG_LEVEL into log.level. Returning "" makes
// koanf skip the variable.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
