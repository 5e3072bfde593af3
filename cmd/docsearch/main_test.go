package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canonical/docsearch/internal/config"
	"github.com/canonical/docsearch/internal/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsearch.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	configPath, logLevel = "", ""
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestBuildCommand(t *testing.T) {
	manifest, err := filepath.Abs("../../internal/manifest/testdata/core.json")
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	cfgPath := writeConfig(t, fmt.Sprintf(`
module_name = "core"
manifest = %q
output_dir = %q
precompress = true

[index]
backend = "bleve"
`, manifest, outDir))

	if err := execute(t, "--config", cfgPath, "--log-level", "error", "build"); err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, rel := range []string{"index.html", "pkg/Foo/bar.html", "scripts/pages.js", "scripts/pages.js.gz"} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	searcher, err := search.NewSearcher(config.BackendBleve, filepath.Join(outDir, "search.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = searcher.Close() }()
	resp, err := searcher.Search(context.Background(), "bar", "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("search total = %d, want 1", resp.Total)
	}
}

func TestBuildThenMergeModules(t *testing.T) {
	manifest, err := filepath.Abs("../../internal/manifest/testdata/core.json")
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	for _, module := range []string{"core", "extras"} {
		cfgPath := writeConfig(t, fmt.Sprintf(`
module_name = %q
manifest = %q
output_dir = %q
delay_template_substitution = true

[index]
backend = "none"
`, module, manifest, filepath.Join(outDir, module)))
		if err := execute(t, "--config", cfgPath, "--log-level", "error", "build"); err != nil {
			t.Fatalf("build %s: %v", module, err)
		}
	}

	cfgPath := writeConfig(t, fmt.Sprintf("module_name = \"site\"\noutput_dir = %q\n", outDir))
	if err := execute(t, "--config", cfgPath, "--log-level", "error", "merge", "core", "extras"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "scripts", "pages.js"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "var pages = ") {
		t.Fatalf("merged script = %s", text)
	}
	for _, loc := range []string{`"core/pkg/Foo/bar.html"`, `"extras/pkg/Foo/bar.html"`} {
		if !strings.Contains(text, loc) {
			t.Errorf("merged script missing %s", loc)
		}
	}

	searcher, err := search.NewSearcher(config.BackendSQLite, filepath.Join(outDir, "search.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = searcher.Close() }()
	for _, module := range []string{"core", "extras"} {
		resp, err := searcher.Search(context.Background(), "bar", module, 10, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := module + "/pkg/Foo/bar.html"
		if len(resp.Results) != 1 || resp.Results[0].Location != want {
			t.Errorf("site index hits for %s = %+v, want %s", module, resp.Results, want)
		}
	}
}

func TestBuildRequiresManifest(t *testing.T) {
	cfgPath := writeConfig(t, fmt.Sprintf("module_name = \"core\"\noutput_dir = %q\n", t.TempDir()))
	if err := execute(t, "--config", cfgPath, "build"); err == nil {
		t.Fatal("expected error without a manifest")
	}
}

func TestMergeRequiresModules(t *testing.T) {
	if err := execute(t, "merge"); err == nil {
		t.Fatal("expected error without module directories")
	}
}

func TestBuildFromRemoteManifest(t *testing.T) {
	data, err := os.ReadFile("../../internal/manifest/testdata/core.json")
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	outDir := t.TempDir()
	cfgPath := writeConfig(t, fmt.Sprintf(`
module_name = "core"
output_dir = %q

[index]
backend = "none"
`, outDir))

	if err := execute(t, "--config", cfgPath, "--log-level", "error", "build", "--manifest", server.URL+"/core.json"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "pkg", "Foo", "bar.html")); err != nil {
		t.Errorf("expected rendered member page: %v", err)
	}
}
