package sitemap

import (
	"context"
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSitemapGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Write one of the pages so its modification time is picked up.
	if err := os.MkdirAll(filepath.Join(dir, "pkg", "Foo"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pkg", "Foo", "bar.html"), []byte("<p>test</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	gen := &SitemapGenerator{
		Root:    dir,
		SiteURL: "https://docs.example.com/core",
		Logger:  logger,
	}

	locations := []string{
		"index.html",
		"pkg/index.html",
		"pkg/Foo/index.html",
		"pkg/Foo/bar.html",
		"ext/index.html",
	}
	if err := gen.Generate(context.Background(), "core", locations); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Verify sitemap index exists and is valid XML.
	indexData, err := os.ReadFile(filepath.Join(dir, "sitemaps", "sitemap-index.xml"))
	if err != nil {
		t.Fatalf("missing sitemap index: %v", err)
	}
	var idx sitemapIndex
	if err := xml.Unmarshal(indexData, &idx); err != nil {
		t.Fatalf("invalid sitemap index XML: %v", err)
	}

	// Should have: core-ext, core-pkg, core-root.
	if len(idx.Sitemaps) != 3 {
		t.Fatalf("expected 3 sitemaps in index, got %d", len(idx.Sitemaps))
	}
	if got := idx.Sitemaps[0].Loc; got != "https://docs.example.com/core/sitemaps/sitemap-core-ext.xml" {
		t.Errorf("first sitemap = %s", got)
	}

	pkgData, err := os.ReadFile(filepath.Join(dir, "sitemaps", "sitemap-core-pkg.xml"))
	if err != nil {
		t.Fatalf("missing core-pkg sitemap: %v", err)
	}
	var urlset sitemapURLSet
	if err := xml.Unmarshal(pkgData, &urlset); err != nil {
		t.Fatalf("invalid pkg sitemap XML: %v", err)
	}
	if len(urlset.URLs) != 3 {
		t.Errorf("expected 3 URLs in pkg sitemap, got %d", len(urlset.URLs))
	}
	for _, u := range urlset.URLs {
		if !strings.HasPrefix(u.Loc, "https://docs.example.com/core/pkg/") {
			t.Errorf("unexpected URL: %s", u.Loc)
		}
		if strings.HasSuffix(u.Loc, "bar.html") && u.LastMod == "" {
			t.Error("existing page should carry lastmod")
		}
	}

	rootData, err := os.ReadFile(filepath.Join(dir, "sitemaps", "sitemap-core-root.xml"))
	if err != nil {
		t.Fatalf("missing root sitemap: %v", err)
	}
	if !strings.Contains(string(rootData), "https://docs.example.com/core/index.html") {
		t.Error("root sitemap missing module page URL")
	}
}

func TestSitemapGenerator_NoPages(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gen := &SitemapGenerator{
		Root:    dir,
		SiteURL: "https://docs.example.com",
		Logger:  logger,
	}

	if err := gen.Generate(context.Background(), "core", nil); err != nil {
		t.Fatalf("Generate failed without pages: %v", err)
	}

	// Index should still exist, empty.
	indexPath := filepath.Join(dir, "sitemaps", "sitemap-index.xml")
	if _, err := os.Stat(indexPath); err != nil {
		t.Fatalf("missing sitemap index: %v", err)
	}
}

func TestSplitURLs(t *testing.T) {
	urls := make([]sitemapURL, 5)
	for i := range urls {
		urls[i] = sitemapURL{Loc: "http://example.com/" + string(rune('a'+i))}
	}

	chunks := splitURLs(urls, 2)
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2 {
		t.Errorf("first chunk: expected 2 URLs, got %d", len(chunks[0]))
	}
	if len(chunks[2]) != 1 {
		t.Errorf("last chunk: expected 1 URL, got %d", len(chunks[2]))
	}

	// Under limit returns single chunk.
	single := splitURLs(urls, 10)
	if len(single) != 1 {
		t.Errorf("expected 1 chunk for under-limit, got %d", len(single))
	}
}
