package searchbar

import (
	"strings"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
	"github.com/canonical/docsearch/internal/pages"
)

// PageWithID pairs one DRI with a page that documents it.
type PageWithID struct {
	DRI  dri.DRI
	Page *pages.ContentPage
}

// DisplayableSignature is the flattened text of the page's symbol block
// for the DRI, or the page name when the page has none.
func (p PageWithID) DisplayableSignature() string {
	if sym := content.LocateSymbol(p.Page.Content, p.DRI); sym != nil {
		return content.Flatten(sym)
	}
	return p.Page.PageName
}

// ID joins the package, class names and callable name with dots.
func (p PageWithID) ID() string {
	parts := make([]string, 0, 3)
	if p.DRI.PackageName != "" {
		parts = append(parts, p.DRI.PackageName)
	}
	if p.DRI.ClassNames != "" {
		parts = append(parts, p.DRI.ClassNames)
	}
	if p.DRI.Callable != nil && p.DRI.Callable.Name != "" {
		parts = append(parts, p.DRI.Callable.Name)
	}
	return strings.Join(parts, ".")
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}
