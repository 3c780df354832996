package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/clikernel/framework/config"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.Options{
		EnvFiles:    []string{filepath.Join(t.TempDir(), "missing.env")},
		Environment: map[string]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dotenv := write(t, dir, ".env", "APP_NAME=from-dotenv\nLOG_LEVEL=debug\nAPP_ENV=testing\n")
	file := write(t, dir, "clikernel.toml", `
[app]
name = "from-file"

[log]
format = "json"

[performance]
enabled = true
file = "perf.log"
`)

	cfg, err := config.Load(config.Options{
		EnvFiles: []string{dotenv},
		File:     file,
		Environment: map[string]string{
			"LOG_FORMAT":               "console",
			"CONTAINER_ALLOW_OVERRIDE": "true",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.App.Name, "file beats dotenv")
	assert.Equal(t, "testing", cfg.App.Env, "dotenv beats defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "environment beats file")
	assert.True(t, cfg.Container.AllowOverride)
	assert.True(t, cfg.Performance.Enabled)
	assert.Equal(t, "perf.log", cfg.Performance.File)
	assert.Equal(t, "clikernel", cfg.Performance.Namespace)
}

func TestLoad_Prefix(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.Options{
		EnvFiles:    []string{filepath.Join(t.TempDir(), "none")},
		Prefix:      "CLIKERNEL_",
		Environment: map[string]string{"CLIKERNEL_INSPECT_ADDR": ":9000", "INSPECT_ADDR": "ignored:1"},
	})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Inspect.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	none := []string{filepath.Join(dir, "none")}

	_, err := config.Load(config.Options{EnvFiles: none, File: filepath.Join(dir, "missing.toml"), Environment: map[string]string{}})
	assert.ErrorContains(t, err, "missing.toml")

	bad := write(t, dir, "bad.toml", "[app\nname=")
	_, err = config.Load(config.Options{EnvFiles: none, File: bad, Environment: map[string]string{}})
	assert.Error(t, err)

	_, err = config.Load(config.Options{EnvFiles: none, Environment: map[string]string{"PERFORMANCE_ENABLED": "maybe"}})
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.App.Name = ""
	cfg.Log.Level = "verbose"
	cfg.Inspect.Addr = "nowhere"

	err := config.Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name is required")
	assert.Contains(t, err.Error(), "log.level must be one of: debug info warn error")
	assert.Contains(t, err.Error(), "inspect.addr must be a host:port address")

	cfg = config.Default()
	cfg.Performance.Metrics = true
	cfg.Performance.Namespace = ""
	assert.ErrorContains(t, config.Validate(&cfg), "performance.namespace is required")
}
