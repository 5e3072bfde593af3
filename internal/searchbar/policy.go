package searchbar

import (
	"strings"

	"github.com/canonical/docsearch/internal/pages"
)

// Reporter receives non-fatal build warnings.
type Reporter interface {
	Warn(msg string)
}

// RecordFunc constructs a single search record.
type RecordFunc func(name string, description *string, location string, searchKeys []string) SearchRecord

// Policy decides which pages are searchable and how records are built.
type Policy interface {
	// ProcessPage returns the entries page contributes to the index.
	ProcessPage(page pages.Node) []PageWithID
	// CreateSearchRecord builds one record.
	CreateSearchRecord(name string, description *string, location string, searchKeys []string) SearchRecord
	// GeneratePagesList turns all entries into the final ordered list,
	// building each record with create.
	GeneratePagesList(entries []PageWithID, resolve pages.LocationResolver, create RecordFunc) []SearchRecord
}

// DefaultPolicy indexes every symbol page except module and package roots.
type DefaultPolicy struct {
	Reporter Reporter
}

func (p *DefaultPolicy) ProcessPage(page pages.Node) []PageWithID {
	cp, ok := page.(*pages.ContentPage)
	if !ok || cp.IsPackageOrModule() {
		return nil
	}
	out := make([]PageWithID, 0, len(cp.DRIs))
	for _, d := range cp.DRIs {
		out = append(out, PageWithID{DRI: d, Page: cp})
	}
	return out
}

func (p *DefaultPolicy) CreateSearchRecord(name string, description *string, location string, searchKeys []string) SearchRecord {
	return NewSearchRecord(name, description, location, searchKeys...)
}

func (p *DefaultPolicy) GeneratePagesList(entries []PageWithID, resolve pages.LocationResolver, create RecordFunc) []SearchRecord {
	if create == nil {
		create = p.CreateSearchRecord
	}
	records := make([]SearchRecord, 0, len(entries))
	for _, e := range entries {
		id := e.ID()
		signature := e.DisplayableSignature()
		records = append(records, create(
			signature,
			&id,
			p.resolveLocation(resolve, e.Page),
			[]string{lastSegment(id), signature, id},
		))
	}
	SortRecords(records)
	return records
}

// resolveLocation looks the page up by its primary DRI. Unresolvable pages
// get an empty location and a warning.
func (p *DefaultPolicy) resolveLocation(resolve pages.LocationResolver, page *pages.ContentPage) string {
	var location string
	if primary, ok := page.DRIs.First(); ok && resolve != nil {
		location = resolve(primary, page.SourceSets)
	}
	if strings.TrimSpace(location) == "" {
		p.warn("Cannot resolve path for " + page.DRIs.String())
		return ""
	}
	return location
}

func (p *DefaultPolicy) warn(msg string) {
	if p.Reporter != nil {
		p.Reporter.Warn(msg)
	}
}
