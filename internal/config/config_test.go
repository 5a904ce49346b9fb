package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/choicerank/internal/history"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "choicerank.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHOICERANK_CONFIG", "CHOICERANK_STORE_DIR", "CHOICERANK_BACKEND",
		"CHOICERANK_DB", "CHOICERANK_STORE", "CHOICERANK_HISTORY_MAX",
		"CHOICERANK_CATALOG", "CHOICERANK_JOURNAL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.HistoryMax != history.DefaultMaxSize {
		t.Errorf("history_max = %d, want %d", cfg.HistoryMax, history.DefaultMaxSize)
	}
	if cfg.JournalPath != "" {
		t.Errorf("journal should be off by default, got %q", cfg.JournalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
backend: sqlite
db_path: /data/choices.db
store_name: share_targets
history_max: 10
journal_path: /data/choices.jsonl
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.DBPath != "/data/choices.db" {
		t.Fatalf("backend = %q db = %q", cfg.Backend, cfg.DBPath)
	}
	if cfg.StoreName != "share_targets" {
		t.Fatalf("store_name = %q", cfg.StoreName)
	}
	if cfg.HistoryMax != 10 {
		t.Fatalf("history_max = %d, want 10", cfg.HistoryMax)
	}
	if cfg.CatalogPath != Default().CatalogPath {
		t.Fatalf("unset field should keep its default, got %q", cfg.CatalogPath)
	}
}

func TestLoadFrom_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store_name: from_file
history_max: 10
`)
	t.Setenv("CHOICERANK_STORE", "from_env")
	t.Setenv("CHOICERANK_HISTORY_MAX", "7")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreName != "from_env" {
		t.Fatalf("store_name = %q, want the env value", cfg.StoreName)
	}
	if cfg.HistoryMax != 7 {
		t.Fatalf("history_max = %d, want 7", cfg.HistoryMax)
	}
}

func TestLoadFrom_BadEnvInt(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "store_name: s\n")
	t.Setenv("CHOICERANK_HISTORY_MAX", "ten")

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for a non-numeric history max")
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "redis" }},
		{"file backend without dir", func(c *Config) { c.StoreDir = "" }},
		{"sqlite backend without db", func(c *Config) { c.Backend = BackendSQLite; c.DBPath = "" }},
		{"empty store name", func(c *Config) { c.StoreName = "" }},
		{"zero history max", func(c *Config) { c.HistoryMax = 0 }},
		{"empty catalog path", func(c *Config) { c.CatalogPath = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_UsesConfigEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "store_name: via_env_path\n")
	t.Setenv("CHOICERANK_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreName != "via_env_path" {
		t.Fatalf("store_name = %q", cfg.StoreName)
	}
}
