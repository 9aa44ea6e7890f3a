package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	LogLevel       string
	LogConsole     bool
	SessionPath    string
	LogPath        string
}

const (
	defaultConfigPath     = "~/.config/vhsrental/config.toml"
	defaultAPIURL         = "http://localhost:8080/api"
	defaultRequestTimeout = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultLogLevel       = "info"
	defaultSessionPath    = "~/.config/vhsrental/session.toml"
	defaultLogPath        = "~/.local/state/vhsrental/vhsrental.log"

	EnvAPIURL     = "VHSRENTAL_API_URL"
	EnvLogLevel   = "VHSRENTAL_LOG_LEVEL"
	EnvLogConsole = "VHSRENTAL_LOG_CONSOLE"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		RefreshTimeout: defaultRefreshTimeout,
		LogLevel:       defaultLogLevel,
		SessionPath:    mustExpand(defaultSessionPath),
		LogPath:        mustExpand(defaultLogPath),
	}
}

// Load reads the config at path (or the default location when path is
// empty), fills in defaults and applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(&cfg)
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		RequestTimeout string `toml:"request_timeout"`
		RefreshTimeout string `toml:"refresh_timeout"`
		LogLevel       string `toml:"log_level"`
		SessionPath    string `toml:"session_path"`
		LogPath        string `toml:"log_path"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTimeout, err = parseDuration("refresh_timeout", raw.RefreshTimeout, cfg.RefreshTimeout); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogConsole)); v != "" {
		cfg.LogConsole, _ = strconv.ParseBool(v)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
