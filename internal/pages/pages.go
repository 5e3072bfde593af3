// Package pages models the rendered documentation page tree. Every update
// returns a modified copy; nodes are never changed in place.
package pages

import (
	"slices"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
)

// Node is a page in the tree.
type Node interface {
	Name() string
	Children() []Node
	// WithChildren returns a copy of the node with children replaced.
	WithChildren(children []Node) Node
}

// PageKind classifies content pages.
type PageKind string

const (
	KindModule    PageKind = "module"
	KindPackage   PageKind = "package"
	KindClasslike PageKind = "classlike"
	KindMember    PageKind = "member"
	KindOther     PageKind = "other"
)

// Root is the root of one documentation module.
type Root struct {
	ModuleName string
	Pages      []Node
}

func (r *Root) Name() string     { return r.ModuleName }
func (r *Root) Children() []Node { return r.Pages }

func (r *Root) WithChildren(children []Node) Node {
	cp := *r
	cp.Pages = children
	return &cp
}

// ContentPage is a rendered page documenting zero or more symbols.
type ContentPage struct {
	Kind              PageKind
	PageName          string
	DRIs              dri.Set
	SourceSets        []content.SourceSet
	Content           content.Node
	EmbeddedResources []string
	Pages             []Node
}

func (p *ContentPage) Name() string     { return p.PageName }
func (p *ContentPage) Children() []Node { return p.Pages }

func (p *ContentPage) WithChildren(children []Node) Node {
	cp := *p
	cp.Pages = children
	return &cp
}

// WithEmbeddedResources returns a copy of p referencing resources.
func (p *ContentPage) WithEmbeddedResources(resources []string) *ContentPage {
	cp := *p
	cp.EmbeddedResources = resources
	return &cp
}

// IsPackageOrModule reports whether p is a module or package root page.
func (p *ContentPage) IsPackageOrModule() bool {
	return p.Kind == KindModule || p.Kind == KindPackage
}

// ResourcePage is a renderer-specific asset such as a script.
type ResourcePage struct {
	Path     string
	Strategy Strategy
	Pages    []Node
}

func (p *ResourcePage) Name() string     { return p.Path }
func (p *ResourcePage) Children() []Node { return p.Pages }

func (p *ResourcePage) WithChildren(children []Node) Node {
	cp := *p
	cp.Pages = children
	return &cp
}

// WithDescendants lists root and every node below it in pre-order.
func WithDescendants(root Node) []Node {
	var out []Node
	var walk func(Node)
	walk = func(n Node) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// Append returns a copy of root with page added after its existing children.
func Append(root Node, page Node) Node {
	children := slices.Clone(root.Children())
	return root.WithChildren(append(children, page))
}

// TransformContentPages rebuilds the tree below root, replacing every
// content page with fn applied to it. Children are transformed before
// their parent is rebuilt.
func TransformContentPages(root Node, fn func(*ContentPage) *ContentPage) Node {
	children := root.Children()
	var rebuilt []Node
	if children != nil {
		rebuilt = make([]Node, len(children))
		for i, c := range children {
			rebuilt[i] = TransformContentPages(c, fn)
		}
	}
	n := root.WithChildren(rebuilt)
	if cp, ok := n.(*ContentPage); ok {
		return fn(cp)
	}
	return n
}
