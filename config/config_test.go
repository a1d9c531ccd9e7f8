package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := InitConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 5432, cfg.DBPort)
}

func TestInitConfigReadsYAML(t *testing.T) {
	dir := t.TempDir()
	body := []byte("port: \"9000\"\nstorage_driver: postgres\nhost: db\nuserdb: u\npassworddb: p\ndbname: rugby\nadmins: [42, 7]\ntick_interval: 250ms\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o644))

	cfg, err := InitConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(1))
	assert.Equal(t, "host=db user=u password=p dbname=rugby port=5432 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("RUGBY_PORT", "7777")

	cfg, err := InitConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "7777", cfg.Port)
}

func TestInitConfigRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage_driver: sqlite\n"), 0o644))

	_, err := InitConfig(dir)
	require.Error(t, err)
}
