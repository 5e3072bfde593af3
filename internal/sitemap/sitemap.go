package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/canonical/docsearch/internal/location"
)

const maxSitemapURLs = 50000

// rootGroup collects pages that sit directly in the module root.
const rootGroup = "root"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapIndexRef `xml:"sitemap"`
}

type sitemapIndexRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

// SitemapGenerator creates sitemap XML files for the pages of a built module.
type SitemapGenerator struct {
	Root    string // module output directory
	SiteURL string // e.g. "https://docs.example.com/core"
	Logger  *slog.Logger
}

// Generate writes one sitemap per top-level directory of locations (the
// package pages and everything below them) plus a sitemap index to
// {Root}/sitemaps/. Locations are slash-separated paths relative to Root.
func (g *SitemapGenerator) Generate(ctx context.Context, module string, locations []string) error {
	sitemapDir := filepath.Join(g.Root, "sitemaps")
	if err := os.MkdirAll(sitemapDir, 0o755); err != nil {
		return fmt.Errorf("create sitemaps dir: %w", err)
	}

	groups := map[string][]string{}
	for _, loc := range locations {
		group, _, found := strings.Cut(loc, "/")
		if !found {
			group = rootGroup
		}
		groups[group] = append(groups[group], loc)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	var indexRefs []sitemapIndexRef
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		refs, err := g.generateGroup(sitemapDir, module, name, groups[name])
		if err != nil {
			g.Logger.Warn("sitemap group error", "module", module, "group", name, "error", err)
			continue
		}
		indexRefs = append(indexRefs, refs...)
	}

	idx := sitemapIndex{
		XMLNS:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		Sitemaps: indexRefs,
	}
	indexPath := filepath.Join(sitemapDir, "sitemap-index.xml")
	return writeXML(indexPath, idx)
}

func (g *SitemapGenerator) generateGroup(sitemapDir, module, group string, locs []string) ([]sitemapIndexRef, error) {
	slices.Sort(locs)

	urls := make([]sitemapURL, 0, len(locs))
	for _, loc := range locs {
		var lastmod string
		if info, err := os.Stat(filepath.Join(g.Root, filepath.FromSlash(loc))); err == nil {
			lastmod = info.ModTime().UTC().Format("2006-01-02")
		}
		urls = append(urls, sitemapURL{
			Loc:     g.SiteURL + "/" + path.Clean(loc),
			LastMod: lastmod,
		})
	}

	var refs []sitemapIndexRef
	now := time.Now().UTC().Format("2006-01-02")

	chunks := splitURLs(urls, maxSitemapURLs)
	for i, chunk := range chunks {
		filename := fmt.Sprintf("sitemap-%s-%s", location.FileName(module), location.FileName(group))
		if len(chunks) > 1 {
			filename = fmt.Sprintf("%s-%d", filename, i+1)
		}
		filename += ".xml"

		if err := g.writeSitemap(filepath.Join(sitemapDir, filename), chunk); err != nil {
			return nil, err
		}
		refs = append(refs, sitemapIndexRef{
			Loc:     g.SiteURL + "/sitemaps/" + filename,
			LastMod: now,
		})
	}

	return refs, nil
}

func (g *SitemapGenerator) writeSitemap(path string, urls []sitemapURL) error {
	urlset := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return writeXML(path, urlset)
}

func writeXML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func splitURLs(urls []sitemapURL, maxPerFile int) [][]sitemapURL {
	if len(urls) <= maxPerFile {
		return [][]sitemapURL{urls}
	}
	var chunks [][]sitemapURL
	for i := 0; i < len(urls); i += maxPerFile {
		end := min(i+maxPerFile, len(urls))
		chunks = append(chunks, urls[i:end])
	}
	return chunks
}
