package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogConsole, "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.RefreshTimeout != defaultRefreshTimeout {
		t.Errorf("RefreshTimeout = %v, want %v", cfg.RefreshTimeout, defaultRefreshTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	want := filepath.Join(home, ".config", "vhsrental", "session.toml")
	if cfg.SessionPath != want {
		t.Errorf("SessionPath = %q, want %q", cfg.SessionPath, want)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Errorf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
api_url = "  https://vhs.example.com/api/  "
request_timeout = "5s"
refresh_timeout = " 2s "
log_level = "debug"
session_path = "~/vhs/session.toml"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://vhs.example.com/api" {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, "https://vhs.example.com/api")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.RefreshTimeout != 2*time.Second {
		t.Errorf("RefreshTimeout = %v, want 2s", cfg.RefreshTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.SessionPath != filepath.Join(home, "vhs", "session.toml") {
		t.Errorf("SessionPath = %q", cfg.SessionPath)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "http://staging:8080/api")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogConsole, "1")

	cfg, err := Load(writeConfig(t, `api_url = "http://file:8080/api"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://staging:8080/api" {
		t.Errorf("APIURL = %q, want the environment value", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if !cfg.LogConsole {
		t.Error("LogConsole = false, want true")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	for name, body := range map[string]string{
		"not toml":         "api_url = ",
		"bad duration":     `request_timeout = "soon"`,
		"negative timeout": `refresh_timeout = "-1s"`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
