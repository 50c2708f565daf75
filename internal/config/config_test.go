package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"document": "server",
		"storage": { "type": "sqlite", "sqlite": { "path": "/data/m.db" } }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "server", GetString("document"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "/data/m.db", viper.GetString("storage.sqlite.path"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./markerlogs", viper.GetString("logsDir"))
	assert.Equal(t, "markers", viper.GetString("document"))
	assert.Equal(t, "file", viper.GetString("storage.type"))
	assert.Equal(t, "./markers", viper.GetString("storage.file.dir"))
	assert.Equal(t, false, viper.GetBool("storage.file.compress"))
	assert.Equal(t, "./markers.db", viper.GetString("storage.sqlite.path"))
	assert.Equal(t, "localhost", viper.GetString("storage.postgres.host"))
	assert.Equal(t, "5432", viper.GetString("storage.postgres.port"))
	assert.Equal(t, true, GetBool("autosave.enabled"))
	assert.Equal(t, "30s", viper.GetString("autosave.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	var notFound viper.ConfigFileNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "file", viper.GetString("storage.type"), "defaults apply without a file")
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "file", cfg.Type)
	assert.Equal(t, "./markers", cfg.File.Dir)
	assert.False(t, cfg.File.Compress)
	assert.Equal(t, "", cfg.SQLite.BackupPath)
	assert.Equal(t, 10*time.Minute, cfg.SQLite.BackupInterval)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=markers sslmode=disable",
		cfg.Postgres.DSN())
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "postgres",
			"file": { "dir": "/tmp/m", "compress": true },
			"postgres": { "host": "db", "database": "maps" }
		}
	}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "/tmp/m", cfg.File.Dir)
	assert.True(t, cfg.File.Compress)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, "maps", cfg.Postgres.Database)
	assert.Equal(t, "5432", cfg.Postgres.Port, "unset keys keep defaults")
}

func TestGetAutosaveConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"autosave": {"interval": "2m"}}`)))

	cfg := GetAutosaveConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Interval)
}
