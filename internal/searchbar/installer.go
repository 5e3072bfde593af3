package searchbar

import "github.com/canonical/docsearch/internal/pages"

// PagesScriptPath is the resource path of the emitted search script.
const PagesScriptPath = "scripts/pages.js"

// Config holds the build settings the installer reads.
type Config struct {
	ModuleName                string
	DelayTemplateSubstitution bool
}

// Installer adds the search script to a page tree.
type Installer struct {
	Policy Policy
	Config Config
	// OnRecords, when set, receives the records of the search script
	// each time its text is computed.
	OnRecords func([]SearchRecord)
}

func (i *Installer) policy() Policy {
	if i.Policy == nil {
		return &DefaultPolicy{}
	}
	return i.Policy
}

// Invoke returns a copy of root with the search script page appended and
// referenced from every content page. The script text is computed when
// the returned page's strategy is evaluated, from the tree as passed in.
func (i *Installer) Invoke(root pages.Node) pages.Node {
	policy := i.policy()
	cfg := i.Config
	observe := i.OnRecords
	script := &pages.ResourcePage{
		Path: PagesScriptPath,
		Strategy: pages.LocationResolvableWrite{
			Content: func(resolve pages.LocationResolver) (string, error) {
				records := policy.GeneratePagesList(CollectEntries(root, policy), resolve, policy.CreateSearchRecord)
				if observe != nil {
					observe(records)
				}
				return Render(records, cfg.DelayTemplateSubstitution, cfg.ModuleName)
			},
		},
	}

	withScript := pages.Append(root, script)
	return pages.TransformContentPages(withScript, func(p *pages.ContentPage) *pages.ContentPage {
		return p.WithEmbeddedResources(append([]string{script.Path}, p.EmbeddedResources...))
	})
}

// Records builds the ordered record list for root without touching the
// tree. It is what the search script of Invoke will contain.
func (i *Installer) Records(root pages.Node, resolve pages.LocationResolver) []SearchRecord {
	policy := i.policy()
	return policy.GeneratePagesList(CollectEntries(root, policy), resolve, policy.CreateSearchRecord)
}

// CollectEntries visits root and all its descendants once each, in
// pre-order, and gathers the entries policy reports for them.
func CollectEntries(root pages.Node, policy Policy) []PageWithID {
	var entries []PageWithID
	for _, n := range pages.WithDescendants(root) {
		entries = append(entries, policy.ProcessPage(n)...)
	}
	return entries
}
