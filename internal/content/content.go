// Package content models the structured content of a rendered
// documentation page and reconstructs plain-text signatures from it.
package content

import "github.com/canonical/docsearch/internal/dri"

// Kind tags what a content node represents.
type Kind string

const (
	KindSymbol      Kind = "Symbol"
	KindAnnotations Kind = "Annotations"
	KindMain        Kind = "Main"
	KindComment     Kind = "Comment"
	KindSource      Kind = "Source"
	KindEmpty       Kind = "Empty"
)

// Platform is the target environment family of a source set.
type Platform string

const (
	PlatformCommon Platform = "common"
	PlatformJVM    Platform = "jvm"
	PlatformJS     Platform = "js"
	PlatformWASM   Platform = "wasm"
	PlatformNative Platform = "native"
)

// SourceSet is one platform variant a node applies to.
type SourceSet struct {
	Name     string
	Platform Platform
}

// DCI carries the DRIs a node documents and its kind.
type DCI struct {
	DRIs dri.Set
	Kind Kind
}

// Node is a content tree node.
type Node interface {
	DCI() DCI
	SourceSets() []SourceSet
}

// Text is a leaf holding literal text.
type Text struct {
	Value   string
	Info    DCI
	Sources []SourceSet
}

func (t *Text) DCI() DCI                { return t.Info }
func (t *Text) SourceSets() []SourceSet { return t.Sources }

// Composite is an ordered group of child nodes.
type Composite struct {
	Children []Node
	Info     DCI
	Sources  []SourceSet
}

func (c *Composite) DCI() DCI                { return c.Info }
func (c *Composite) SourceSets() []SourceSet { return c.Sources }

// Break is a line break; it carries no text.
type Break struct {
	Info    DCI
	Sources []SourceSet
}

func (b *Break) DCI() DCI                { return b.Info }
func (b *Break) SourceSets() []SourceSet { return b.Sources }

// ContainsSourceSet reports whether sets includes s.
func ContainsSourceSet(sets []SourceSet, s SourceSet) bool {
	for _, e := range sets {
		if e == s {
			return true
		}
	}
	return false
}

// DFS returns the first node in pre-order for which pred holds, or nil.
func DFS(root Node, pred func(Node) bool) Node {
	if root == nil {
		return nil
	}
	if pred(root) {
		return root
	}
	if c, ok := root.(*Composite); ok {
		for _, child := range c.Children {
			if found := DFS(child, pred); found != nil {
				return found
			}
		}
	}
	return nil
}

// LocateSymbol finds the Symbol-kind node documenting d.
func LocateSymbol(root Node, d dri.DRI) Node {
	return DFS(root, func(n Node) bool {
		info := n.DCI()
		return info.Kind == KindSymbol && info.DRIs.Contains(d)
	})
}
