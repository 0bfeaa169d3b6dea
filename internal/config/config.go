// Package config loads viva's settings from config.yaml in the config
// directory, writing a default file on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/viva/internal/timeline"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvConfigDir overrides the config directory when --config-dir is not given.
	EnvConfigDir = "VIVA_CONFIG_DIR"
	envPrefix    = "VIVA"
)

// Config keys.
const (
	KeyDBPath            = "db_path"
	KeyLogFile           = "log_file"
	KeyLogLevel          = "log_level"
	KeyDefaultStart      = "default_start"
	KeyDefaultEnd        = "default_end"
	KeySnapStep          = "snap_step"
	KeyHostEmailDomain   = "host_email_domain"
	KeyMaxSignInAttempts = "max_sign_in_attempts"
	KeySignInLockout     = "sign_in_lockout"
)

// DefaultHostEmailDomain is appended to host usernames to form sign-in emails.
const DefaultHostEmailDomain = "hosts.viva-invite.app"

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# viva configuration

# Database and log locations (default: inside this directory)
# db_path:
# log_file:
log_level: info

# Event window used when an invitation has no start or end time
default_start: "09:00"
default_end: "17:00"

# Timeline snap granularity in minutes
snap_step: 5

# Host accounts
host_email_domain: hosts.viva-invite.app
max_sign_in_attempts: 5
sign_in_lockout: 1m
`

type Config struct {
	Dir               string
	DBPath            string
	LogFile           string
	LogLevel          string
	DefaultStart      string
	DefaultEnd        string
	SnapStep          int
	HostEmailDomain   string
	MaxSignInAttempts int
	SignInLockout     time.Duration
}

// DefaultWindow is the application-wide fallback for ResolveWindow.
func (c *Config) DefaultWindow() timeline.ClockPair {
	return timeline.ClockPair{Start: c.DefaultStart, End: c.DefaultEnd}
}

// ResolveDir picks the config directory: flag, then $VIVA_CONFIG_DIR, then
// the platform config dir ($XDG_CONFIG_HOME/viva on Linux).
func ResolveDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return env, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "viva"), nil
}

// Load reads config.yaml from dir. The directory and a default file are
// created when missing. VIVA_* environment variables override file values.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Dir:               dir,
		DBPath:            v.GetString(KeyDBPath),
		LogFile:           v.GetString(KeyLogFile),
		LogLevel:          v.GetString(KeyLogLevel),
		DefaultStart:      v.GetString(KeyDefaultStart),
		DefaultEnd:        v.GetString(KeyDefaultEnd),
		SnapStep:          v.GetInt(KeySnapStep),
		HostEmailDomain:   v.GetString(KeyHostEmailDomain),
		MaxSignInAttempts: v.GetInt(KeyMaxSignInAttempts),
		SignInLockout:     v.GetDuration(KeySignInLockout),
	}
	if cfg.SnapStep <= 0 {
		cfg.SnapStep = timeline.DefaultStep
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyDBPath, filepath.Join(dir, "viva.db"))
	v.SetDefault(KeyLogFile, filepath.Join(dir, "viva.log"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDefaultStart, timeline.DefaultStart)
	v.SetDefault(KeyDefaultEnd, timeline.DefaultEnd)
	v.SetDefault(KeySnapStep, timeline.DefaultStep)
	v.SetDefault(KeyHostEmailDomain, DefaultHostEmailDomain)
	v.SetDefault(KeyMaxSignInAttempts, 5)
	v.SetDefault(KeySignInLockout, time.Minute)
}

func ensureDefaultConfigFile(dir string) error {
	path := filepath.Join(dir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
