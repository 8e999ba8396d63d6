package config

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected db %q, got %q", DefaultDBPath, cfg.DBPath)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("expected addr %q, got %q", DefaultAddr, cfg.Addr)
	}
	if cfg.StoreTimeout != DefaultStoreTimeout {
		t.Errorf("expected store timeout %s, got %s", DefaultStoreTimeout, cfg.StoreTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("expected info text logging, got %v %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadLogging(t *testing.T) {
	t.Setenv("NAJDENO_LOG_LEVEL", "debug")

	cfg, err := Load([]string{"-log-format", "json"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level from env, got %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json format from flag, got %q", cfg.LogFormat)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("NAJDENO_DB", "/tmp/env.sqlite3")
	t.Setenv("NAJDENO_ADDR", ":9000")
	t.Setenv("NAJDENO_STORE_TIMEOUT", "3s")

	cfg, err := Load([]string{"-a", ":7000", "-notify-workers", "4"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/env.sqlite3" {
		t.Errorf("expected db from env, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("expected addr from flag, got %q", cfg.Addr)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Errorf("expected 3s store timeout, got %s", cfg.StoreTimeout)
	}
	if cfg.NotifyWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.NotifyWorkers)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad env duration", nil, map[string]string{"NAJDENO_STORE_TIMEOUT": "soon"}},
		{"bad env int", nil, map[string]string{"NAJDENO_NOTIFY_WORKERS": "many"}},
		{"zero timeout", []string{"-store-timeout", "0s"}, nil},
		{"negative rate", []string{"-claim-rate", "-1"}, nil},
		{"extra argument", []string{"serve"}, nil},
		{"unknown flag", []string{"-verbose"}, nil},
		{"bad log level", []string{"-log-level", "loud"}, nil},
		{"bad log format", nil, map[string]string{"NAJDENO_LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(tt.args, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"-h"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NAJDENO_USER=Keeper\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NAJDENO_USER", "")
	os.Unsetenv("NAJDENO_USER")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminUser != "Keeper" {
		t.Errorf("expected admin user from .env, got %q", cfg.AdminUser)
	}
}
