// Package render writes a page tree to the output directory.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/location"
	"github.com/canonical/docsearch/internal/pages"
	"github.com/canonical/docsearch/internal/storage"
)

//go:embed templates/page.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html"))

// Writer writes content pages as HTML and resource pages according to
// their strategy.
type Writer struct {
	Storage     *storage.FSStorage
	Locations   *location.Provider
	Precompress bool // also write .gz copies of resource pages
	Workers     int
	Logger      *slog.Logger
}

// Stats summarises a Write call.
type Stats struct {
	ContentPages  int
	ResourcePages int
}

type pageView struct {
	Title      string
	Kind       pages.PageKind
	PathToRoot string
	Scripts    []string
	Styles     []string
	Body       template.HTML
}

// Write renders every page below root. Pages are independent, so they are
// written concurrently; the first error cancels the rest.
func (w *Writer) Write(ctx context.Context, root pages.Node) (Stats, error) {
	if w.Storage == nil || w.Locations == nil {
		return Stats{}, fmt.Errorf("render writer missing dependencies")
	}

	var contentCount, resourceCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if w.Workers > 0 {
		g.SetLimit(w.Workers)
	}

	for _, n := range pages.WithDescendants(root) {
		switch page := n.(type) {
		case *pages.ContentPage:
			g.Go(func() error {
				if err := w.writeContentPage(gctx, page); err != nil {
					return err
				}
				contentCount.Add(1)
				return nil
			})
		case *pages.ResourcePage:
			g.Go(func() error {
				if err := w.writeResourcePage(gctx, page); err != nil {
					return err
				}
				resourceCount.Add(1)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	stats := Stats{ContentPages: int(contentCount.Load()), ResourcePages: int(resourceCount.Load())}
	if w.Logger != nil {
		w.Logger.Info("site written", "content_pages", stats.ContentPages, "resource_pages", stats.ResourcePages)
	}
	return stats, nil
}

func (w *Writer) writeContentPage(ctx context.Context, page *pages.ContentPage) error {
	file, ok := w.Locations.PathOf(page)
	if !ok {
		return fmt.Errorf("no location for page %q", page.PageName)
	}
	toRoot := PathToRoot(file)
	view := pageView{
		Title:      page.PageName,
		Kind:       page.Kind,
		PathToRoot: toRoot,
		Body:       template.HTML(RenderContent(page.Content)),
	}
	for _, res := range page.EmbeddedResources {
		href := res
		if !strings.Contains(res, "://") {
			href = toRoot + res
		}
		if strings.HasSuffix(res, ".css") {
			view.Styles = append(view.Styles, href)
		} else {
			view.Scripts = append(view.Scripts, href)
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render page %s: %w", file, err)
	}
	if err := w.Storage.WriteFile(ctx, file, buf.Bytes()); err != nil {
		return fmt.Errorf("write page %s: %w", file, err)
	}
	if w.Logger != nil {
		w.Logger.Debug("wrote page", "path", file)
	}
	return nil
}

func (w *Writer) writeResourcePage(ctx context.Context, page *pages.ResourcePage) error {
	var text string
	switch s := page.Strategy.(type) {
	case pages.Copy:
		if err := w.Storage.CopyFile(ctx, page.Path, s.From); err != nil {
			return fmt.Errorf("copy resource %s: %w", page.Path, err)
		}
		return nil
	case pages.Write:
		text = s.Text
	case pages.LocationResolvableWrite:
		out, err := s.Content(w.Locations.Resolver())
		if err != nil {
			return fmt.Errorf("compute resource %s: %w", page.Path, err)
		}
		text = out
	default:
		return fmt.Errorf("resource %s: unsupported strategy %T", page.Path, page.Strategy)
	}

	if err := w.Storage.WriteFile(ctx, page.Path, []byte(text)); err != nil {
		return fmt.Errorf("write resource %s: %w", page.Path, err)
	}
	if w.Precompress {
		if err := w.Storage.WriteGzip(ctx, page.Path+".gz", []byte(text)); err != nil {
			return fmt.Errorf("write resource %s.gz: %w", page.Path, err)
		}
	}
	return nil
}

// PathToRoot returns the relative prefix leading from file back to the
// output root, e.g. "../../" for "pkg/Foo/bar.html".
func PathToRoot(file string) string {
	depth := strings.Count(path.Clean(file), "/")
	return strings.Repeat("../", depth)
}

// RenderContent renders a content tree as minimal HTML. Groups become
// elements tagged with their kind and line breaks become <br>.
func RenderContent(node content.Node) string {
	var b strings.Builder
	renderNode(&b, node)
	return b.String()
}

func renderNode(b *strings.Builder, node content.Node) {
	switch n := node.(type) {
	case *content.Text:
		b.WriteString(html.EscapeString(n.Value))
	case *content.Break:
		b.WriteString("<br>")
	case *content.Composite:
		tag := "div"
		if n.Info.Kind == content.KindSymbol {
			tag = "pre"
		}
		b.WriteString("<" + tag + ` class="` + strings.ToLower(string(n.Info.Kind)) + `">`)
		for _, c := range n.Children {
			renderNode(b, c)
		}
		b.WriteString("</" + tag + ">")
	}
}
