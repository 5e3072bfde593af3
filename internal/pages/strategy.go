package pages

import (
	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
)

// LocationResolver maps a DRI in a set of source sets to the final
// location of its page. An empty result means the location is unknown.
type LocationResolver func(d dri.DRI, sourceSets []content.SourceSet) string

// Strategy tells the writer how to produce a resource page.
type Strategy interface {
	strategy()
}

// Copy copies a file from the build inputs.
type Copy struct {
	From string
}

// Write writes Text verbatim.
type Write struct {
	Text string
}

// LocationResolvableWrite defers computing the page text until final
// locations are assigned and the writer can supply a resolver.
type LocationResolvableWrite struct {
	Content func(resolve LocationResolver) (string, error)
}

func (Copy) strategy()                    {}
func (Write) strategy()                   {}
func (LocationResolvableWrite) strategy() {}
