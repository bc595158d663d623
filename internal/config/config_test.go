package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every TALLY_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), *cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
curriculum_dir: /srv/curriculum
owner_id: learner-7
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/curriculum", cfg.CurriculumDir)
	assert.Equal(t, "learner-7", cfg.OwnerID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep their default")
	assert.Equal(t, "tally.db", cfg.Database)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "database: from-file.db\nsave_retries: 1\n")
	t.Setenv("TALLY_DATABASE", "from-env.db")
	t.Setenv("TALLY_LOG_FORMAT", "json")
	t.Setenv("TALLY_SAVE_RETRIES", "5")
	t.Setenv("TALLY_UNRELATED", "ignored")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.SaveRetries)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "owner_id: from-env-file\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", cfg.OwnerID)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad level", "log:\n  level: loud\n", "Level"},
		{"bad format", "log:\n  format: xml\n", "Format"},
		{"negative retries", "save_retries: -1\n", "SaveRetries"},
		{"empty database", "database: \"\"\n", "Database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "log.level", envTransformFunc("TALLY_LOG_LEVEL"))
	assert.Equal(t, "curriculum_dir", envTransformFunc("TALLY_CURRICULUM_DIR"))
	assert.Equal(t, "", envTransformFunc("TALLY_CONFIG"))
	assert.Equal(t, "", envTransformFunc("TALLY_NOPE"))
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
}
