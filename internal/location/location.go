// Package location assigns output paths to the pages of a tree and
// resolves DRIs to those paths.
package location

import (
	"fmt"
	"path"
	"strings"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
	"github.com/canonical/docsearch/internal/pages"
)

type candidate struct {
	path       string
	sourceSets []content.SourceSet
}

// Provider maps pages and DRIs to slash-separated paths relative to the
// module output root.
type Provider struct {
	byPage map[pages.Node]string
	byDRI  map[string][]candidate
	taken  map[string]bool
}

// New computes the paths of every page under root. Module pages map to
// "index.html", packages and classlikes to "<dir>/index.html", other pages
// to "<parent dir>/<name>.html". Resource pages keep their own path.
func New(root pages.Node) *Provider {
	p := &Provider{
		byPage: map[pages.Node]string{},
		byDRI:  map[string][]candidate{},
		taken:  map[string]bool{},
	}
	p.assign(root, "")
	return p
}

func (p *Provider) assign(n pages.Node, dir string) {
	childDir := dir
	switch page := n.(type) {
	case *pages.ResourcePage:
		p.claim(n, page.Path)
		return
	case *pages.ContentPage:
		var file string
		switch page.Kind {
		case pages.KindModule:
			file = path.Join(dir, "index.html")
		case pages.KindPackage, pages.KindClasslike:
			childDir = path.Join(dir, FileName(page.PageName))
			file = path.Join(childDir, "index.html")
		default:
			childDir = path.Join(dir, FileName(page.PageName))
			file = path.Join(dir, FileName(page.PageName)+".html")
		}
		file = p.claim(n, file)
		for _, d := range page.DRIs {
			p.byDRI[d.Key()] = append(p.byDRI[d.Key()], candidate{path: file, sourceSets: page.SourceSets})
		}
	}
	for _, c := range n.Children() {
		p.assign(c, childDir)
	}
}

// claim records file for n, suffixing "-2", "-3", ... when another page
// already uses it.
func (p *Provider) claim(n pages.Node, file string) string {
	unique := file
	for i := 2; p.taken[unique]; i++ {
		ext := path.Ext(file)
		unique = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(file, ext), i, ext)
	}
	p.taken[unique] = true
	p.byPage[n] = unique
	return unique
}

// PathOf returns the output path of page.
func (p *Provider) PathOf(page pages.Node) (string, bool) {
	file, ok := p.byPage[page]
	return file, ok
}

// Resolve returns the path of the page documenting d, preferring a page
// that shares a source set with sourceSets. It returns "" when no page
// documents d.
func (p *Provider) Resolve(d dri.DRI, sourceSets []content.SourceSet) string {
	candidates := p.byDRI[d.Key()]
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates {
		for _, s := range sourceSets {
			if content.ContainsSourceSet(c.sourceSets, s) {
				return c.path
			}
		}
	}
	return candidates[0].path
}

// Resolver adapts p to pages.LocationResolver.
func (p *Provider) Resolver() pages.LocationResolver {
	return p.Resolve
}

// FileName converts a page name into a file-system safe path segment.
// Letters, digits, '_', '.' and '-' are kept; every other rune becomes '-'.
func FileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 || strings.Trim(b.String(), ".") == "" {
		return "-"
	}
	return b.String()
}
