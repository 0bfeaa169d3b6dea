package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "viva")

	cfg, err := Load(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_start")

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "viva.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "viva.log"), cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "09:00", cfg.DefaultStart)
	assert.Equal(t, "17:00", cfg.DefaultEnd)
	assert.Equal(t, 5, cfg.SnapStep)
	assert.Equal(t, "hosts.viva-invite.app", cfg.HostEmailDomain)
	assert.Equal(t, 5, cfg.MaxSignInAttempts)
	assert.Equal(t, time.Minute, cfg.SignInLockout)
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "default_start: \"10:30\"\nsnap_step: 15\nsign_in_lockout: 30s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "10:30", cfg.DefaultStart)
	assert.Equal(t, "17:00", cfg.DefaultEnd)
	assert.Equal(t, 15, cfg.SnapStep)
	assert.Equal(t, 30*time.Second, cfg.SignInLockout)
	assert.Equal(t, "debug", cfg.LogLevel)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, yaml, string(data), "existing file must not be overwritten")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VIVA_DEFAULT_END", "22:00")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "22:00", cfg.DefaultEnd)
}

func TestLoadBadSnapStep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("snap_step: 0\n"), 0o644))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.SnapStep)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("snap_step: [\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestResolveDir(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/dir")

	dir, err := ResolveDir("/flag/dir")
	require.NoError(t, err)
	assert.Equal(t, "/flag/dir", dir)

	dir, err = ResolveDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/dir", dir)

	if runtime.GOOS != "linux" {
		return
	}
	t.Setenv(EnvConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err = ResolveDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "viva"), dir)
}

func TestDefaultWindow(t *testing.T) {
	cfg := &Config{DefaultStart: "08:00", DefaultEnd: "12:00"}
	w := cfg.DefaultWindow()
	assert.Equal(t, "08:00", w.Start)
	assert.Equal(t, "12:00", w.End)
}
