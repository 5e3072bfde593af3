// Package manifest loads a rendered page tree exported by the
// documentation renderer as JSON.
//
// Content nodes and pages that omit "sourceSets" inherit those of their
// parent; top-level pages default to every declared source set.
package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/canonical/docsearch/internal/content"
	"github.com/canonical/docsearch/internal/dri"
	"github.com/canonical/docsearch/internal/pages"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://docsearch.canonical.com/schema/manifest.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse manifest schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add manifest schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidationError reports a manifest that does not match the schema or
// refers to unknown identifiers.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type fileSourceSet struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type file struct {
	ModuleName string          `json:"moduleName"`
	SourceSets []fileSourceSet `json:"sourceSets"`
	Pages      []filePage      `json:"pages"`
}

type filePage struct {
	Kind              string     `json:"kind"`
	Name              string     `json:"name"`
	DRIs              []string   `json:"dris"`
	SourceSets        []string   `json:"sourceSets"`
	EmbeddedResources []string   `json:"embeddedResources"`
	Content           *fileNode  `json:"content"`
	Children          []filePage `json:"children"`
}

type fileNode struct {
	Type       string     `json:"type"`
	Text       string     `json:"text"`
	Kind       string     `json:"kind"`
	DRIs       []string   `json:"dris"`
	SourceSets []string   `json:"sourceSets"`
	Children   []fileNode `json:"children"`
}

// Load reads and converts the manifest at path.
func Load(path string) (*pages.Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, path)
}

// Decode validates the manifest read from r and converts it to a page
// tree. source names the input in errors.
func Decode(r io.Reader, source string) (*pages.Root, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}
	if err := schema.Validate(inst); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}

	var m file
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	c := converter{sets: make(map[string]content.SourceSet, len(m.SourceSets))}
	all := make([]content.SourceSet, 0, len(m.SourceSets))
	for _, s := range m.SourceSets {
		set := content.SourceSet{Name: s.Name, Platform: content.Platform(s.Platform)}
		c.sets[s.Name] = set
		all = append(all, set)
	}

	root := &pages.Root{ModuleName: m.ModuleName}
	for _, p := range m.Pages {
		page, err := c.page(p, all)
		if err != nil {
			return nil, &ValidationError{Source: source, Err: err}
		}
		root.Pages = append(root.Pages, page)
	}
	return root, nil
}

type converter struct {
	sets map[string]content.SourceSet
}

func (c *converter) sourceSets(names []string, inherited []content.SourceSet) ([]content.SourceSet, error) {
	if names == nil {
		return inherited, nil
	}
	out := make([]content.SourceSet, 0, len(names))
	for _, n := range names {
		s, ok := c.sets[n]
		if !ok {
			return nil, fmt.Errorf("unknown source set %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseDRIs(raw []string) (dri.Set, error) {
	ds := make([]dri.DRI, 0, len(raw))
	for _, r := range raw {
		d, err := dri.Parse(r)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return dri.NewSet(ds...), nil
}

func (c *converter) page(p filePage, inherited []content.SourceSet) (*pages.ContentPage, error) {
	sets, err := c.sourceSets(p.SourceSets, inherited)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", p.Name, err)
	}
	dris, err := parseDRIs(p.DRIs)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", p.Name, err)
	}
	page := &pages.ContentPage{
		Kind:              pages.PageKind(p.Kind),
		PageName:          p.Name,
		DRIs:              dris,
		SourceSets:        sets,
		EmbeddedResources: p.EmbeddedResources,
	}
	if p.Content != nil {
		node, err := c.node(*p.Content, sets)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", p.Name, err)
		}
		page.Content = node
	}
	for _, child := range p.Children {
		cp, err := c.page(child, sets)
		if err != nil {
			return nil, err
		}
		page.Pages = append(page.Pages, cp)
	}
	return page, nil
}

func (c *converter) node(n fileNode, inherited []content.SourceSet) (content.Node, error) {
	sets, err := c.sourceSets(n.SourceSets, inherited)
	if err != nil {
		return nil, err
	}
	dris, err := parseDRIs(n.DRIs)
	if err != nil {
		return nil, err
	}
	info := content.DCI{DRIs: dris, Kind: content.Kind(n.Kind)}

	switch n.Type {
	case "text":
		return &content.Text{Value: n.Text, Info: info, Sources: sets}, nil
	case "break":
		return &content.Break{Info: info, Sources: sets}, nil
	}

	if info.Kind == "" {
		info.Kind = content.KindMain
	}
	group := &content.Composite{Info: info, Sources: sets}
	for _, child := range n.Children {
		cn, err := c.node(child, sets)
		if err != nil {
			return nil, err
		}
		group.Children = append(group.Children, cn)
	}
	return group, nil
}
