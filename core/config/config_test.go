package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: from-file
  run_mode: polling
rate_limit:
  interval_ms: 500
  exclude_updates: [" Callback ", "inline_query"]
`)
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if got := cfg.RateLimit.ExcludeUpdates[0]; got != UpdateCallback {
		t.Fatalf("exclude[0] = %q, want normalized %q", got, UpdateCallback)
	}
	if cfg.Dedupe.Backend != DedupeNone {
		t.Fatalf("dedupe backend = %q, want %q", cfg.Dedupe.Backend, DedupeNone)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [unclosed")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse YAML") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing token",
			cfg:     Config{},
			wantErr: "token is required",
		},
		{
			name:    "unknown run mode",
			cfg:     Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}},
			wantErr: "invalid telegram.run_mode",
		},
		{
			name:    "webhook without url",
			cfg:     Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
			wantErr: "webhook.url is required",
		},
		{
			name: "bad exclude",
			cfg: Config{
				Telegram:  TelegramConfig{Token: "t"},
				RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}},
			},
			wantErr: "invalid rate_limit.exclude_updates",
		},
		{
			name: "database without host",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t"},
				Database: DatabaseConfig{Enabled: true},
			},
			wantErr: "database.host",
		},
		{
			name: "redis without addr",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t"},
				Dedupe:   DedupeConfig{Backend: "redis"},
			},
			wantErr: "dedupe.redis.addr",
		},
		{
			name: "unknown dedupe backend",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t"},
				Dedupe:   DedupeConfig{Backend: "etcd"},
			},
			wantErr: "invalid dedupe.backend",
		},
		{
			name: "valid webhook",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "WEBHOOK"},
				Webhook:  WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0", Port: 8443},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Normalize(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{Token: " t "},
		Database: DatabaseConfig{Enabled: true, Host: "db", Name: "folio", User: "folio"},
		Dedupe:   DedupeConfig{Backend: "Bolt"},
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.Token != "t" {
		t.Fatalf("token not trimmed: %q", cfg.Telegram.Token)
	}
	if cfg.Database.Port != "5432" || cfg.Database.SSLMode != "disable" || cfg.Database.MigrationsDir != "migrations" {
		t.Fatalf("database defaults not applied: %+v", cfg.Database)
	}
	if cfg.Dedupe.Backend != DedupeBolt || cfg.Dedupe.Path == "" || cfg.Dedupe.TTLSeconds != 600 {
		t.Fatalf("dedupe defaults not applied: %+v", cfg.Dedupe)
	}
}
