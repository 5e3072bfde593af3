package content

import "strings"

// Flatten reconstructs the plain text of node as rendered for a single
// source set. Annotation groups are dropped whole.
func Flatten(node Node) string {
	if node == nil {
		return ""
	}
	restriction, ok := preferredSourceSet(node.SourceSets())
	if !ok {
		return ""
	}
	var b strings.Builder
	collectText(&b, node, restriction)
	return b.String()
}

// preferredSourceSet picks the common source set when present, otherwise
// the one with the smallest name so the choice does not depend on input
// order.
func preferredSourceSet(sets []SourceSet) (SourceSet, bool) {
	if len(sets) == 0 {
		return SourceSet{}, false
	}
	best := sets[0]
	for _, s := range sets {
		if s.Platform == PlatformCommon {
			return s, true
		}
		if s.Name < best.Name {
			best = s
		}
	}
	return best, true
}

func collectText(b *strings.Builder, node Node, restriction SourceSet) {
	switch n := node.(type) {
	case *Text:
		b.WriteString(n.Value)
	case *Composite:
		if n.Info.Kind == KindAnnotations {
			return
		}
		for _, child := range n.Children {
			if ContainsSourceSet(child.SourceSets(), restriction) {
				collectText(b, child, restriction)
			}
		}
	}
}
