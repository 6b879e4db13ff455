package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/daybook/config"
)

var keys = []string{
	"DAYBOOK_PORT", "DAYBOOK_DB", "DAYBOOK_DATABASE_URL", "DAYBOOK_MODE",
	"DAYBOOK_SCAN_INTERVAL", "DAYBOOK_ALLOWED_ORIGINS", "DAYBOOK_CONFIG",
}

// clearEnv unsets every key for the test and restores it afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "daybook.db", cfg.DBPath)
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYBOOK_PORT", "9090")
	t.Setenv("DAYBOOK_DATABASE_URL", "postgres://localhost/daybook")
	t.Setenv("DAYBOOK_SCAN_INTERVAL", "15m")
	t.Setenv("DAYBOOK_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := config.Load(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, 15*time.Minute, cfg.ScanInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// GIVEN: a .env file and an explicit variable that wins over it
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DAYBOOK_MODE=debug\nDAYBOOK_DB=from-file.db\n"), 0o600))
	t.Setenv("DAYBOOK_DB", "from-env.db")

	// WHEN
	cfg, err := config.Load(path)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, "from-env.db", cfg.DBPath)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "daybook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nscan_interval: 5m\n"), 0o600))
	t.Setenv("DAYBOOK_CONFIG", path)

	cfg, err := config.Load(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ScanInterval)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYBOOK_PORT", "70000")

	_, err := config.Load(missingEnvFile(t))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := config.Config{Port: 8080, DBPath: "x.db", ScanInterval: time.Minute}
	require.NoError(t, base.Validate())

	noStore := base
	noStore.DBPath = ""
	assert.Error(t, noStore.Validate())

	noInterval := base
	noInterval.ScanInterval = 0
	assert.Error(t, noInterval.Validate())
}
