package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Watch.Interval != "1h" || cfg.WatchInterval() != time.Hour {
		t.Fatalf("unexpected interval default: %s", cfg.Watch.Interval)
	}
	if cfg.ArXiv.BaseURL != "https://export.arxiv.org" {
		t.Fatalf("unexpected base url default: %s", cfg.ArXiv.BaseURL)
	}
	if cfg.Enrich.Provider != "ollama" {
		t.Fatalf("unexpected provider default: %s", cfg.Enrich.Provider)
	}
	if cfg.Cache.Backend != "memory" {
		t.Fatalf("unexpected cache default: %s", cfg.Cache.Backend)
	}
	if cfg.Storage.Path != "./paperwatch.db" {
		t.Fatalf("unexpected storage default: %s", cfg.Storage.Path)
	}
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
[watch]
interval = "30m"
run_once = true
data_dir = "/var/lib/paperwatch"
per_keyword_limit = 25
enrich_workers = 8

[enrich]
provider = "openai"
model = "gpt-4o-mini"

[cache]
backend = "redis"
ttl = "24h"
redis_addr = "redis:6379"

[server]
enabled = true
port = "9090"
feed_size = 200

[email]
enabled = true
server = "smtp.example.com"
to = "papers@example.com"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.WatchInterval() != 30*time.Minute || !cfg.Watch.RunOnce {
		t.Fatalf("watch section misparsed: %+v", cfg.Watch)
	}
	if cfg.Enrich.Provider != "openai" || cfg.Enrich.Model != "gpt-4o-mini" {
		t.Fatalf("enrich section misparsed: %+v", cfg.Enrich)
	}
	if cfg.Cache.Backend != "redis" || cfg.CacheTTL() != 24*time.Hour {
		t.Fatalf("cache section misparsed: %+v", cfg.Cache)
	}
	if !cfg.Server.Enabled || cfg.Server.Port != "9090" {
		t.Fatalf("server section misparsed: %+v", cfg.Server)
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "[watch]\ninterval = \"not a duration\"\n")); err == nil {
		t.Fatal("expected error for malformed interval")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "[enrich]\nprovider = \"carrier-pigeon\"\n")); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsIncompleteEmail(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "[email]\nenabled = true\n")); err == nil {
		t.Fatal("expected error when email is enabled without a server")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
