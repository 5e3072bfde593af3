package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "docsearch.toml", `
module_name = "core"
delay_template_substitution = true
manifest = "build/pages.json"
output_dir = "out"
site = "https://docs.example.com/"
precompress = true

[index]
backend = "Bleve"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModuleName != "core" || !cfg.DelayTemplateSubstitution || !cfg.Precompress {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Index.Backend != BackendBleve {
		t.Fatalf("backend = %q", cfg.Index.Backend)
	}
	if got := cfg.IndexPath(); got != filepath.Join("out", "search.bleve") {
		t.Fatalf("IndexPath = %q", got)
	}
	if got := cfg.SiteURL(); got != "https://docs.example.com" {
		t.Fatalf("SiteURL = %q", got)
	}
	if cfg.Workers != 8 {
		t.Fatalf("workers default = %d", cfg.Workers)
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"module_name": "core", "output_dir": "out"}`)
	t.Setenv("DOCSEARCH_MODULE_NAME", "overridden")
	t.Setenv("DOCSEARCH_INDEX_BACKEND", "none")
	t.Setenv("DOCSEARCH_DELAY_TEMPLATE_SUBSTITUTION", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModuleName != "overridden" {
		t.Fatalf("module_name = %q", cfg.ModuleName)
	}
	if cfg.Index.Backend != BackendNone || cfg.IndexPath() != "" {
		t.Fatalf("unexpected index config: %+v", cfg.Index)
	}
	if !cfg.DelayTemplateSubstitution {
		t.Fatal("expected delayed mode from environment")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing module", `output_dir = "out"`, "module_name is required"},
		{"bad backend", "module_name = \"core\"\n[index]\nbackend = \"redis\"", "index.backend"},
		{"negative workers", "module_name = \"core\"\nworkers = -1", "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "c.toml", tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("DOCSEARCH_CONFIG_FILE", "")
	if got := DefaultPath(); got != defaultConfigPath {
		t.Fatalf("got %q", got)
	}
	t.Setenv("DOCSEARCH_CONFIG_FILE", "/etc/docsearch.yaml")
	if got := DefaultPath(); got != "/etc/docsearch.yaml" {
		t.Fatalf("got %q", got)
	}
}

func TestIndexPathDefaults(t *testing.T) {
	cfg := &Config{OutputDir: "public", Index: IndexConfig{Backend: BackendSQLite}}
	if got := cfg.IndexPath(); got != filepath.Join("public", "search.db") {
		t.Fatalf("got %q", got)
	}
	cfg.Index.Path = "/var/lib/search.db"
	if got := cfg.IndexPath(); got != "/var/lib/search.db" {
		t.Fatalf("got %q", got)
	}
}
