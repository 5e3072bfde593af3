package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const bleveBatchSize = 100

// bleveRecord is the stored form of a Document.
type bleveRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location"`
	SearchKeys  []string `json:"searchKeys"`
	Module      string   `json:"module"`
}

var resultFields = []string{"name", "description", "location", "module"}

func recordMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	stored := bleve.NewTextFieldMapping()
	stored.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("searchKeys", text)
	doc.AddFieldMappingsAt("description", text)
	doc.AddFieldMappingsAt("location", stored)
	doc.AddFieldMappingsAt("module", exact)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// BleveIndexer writes documents into a bleve index. As with SQLiteIndexer,
// the documents of one module replace that module's previous documents.
type BleveIndexer struct {
	mu       sync.Mutex
	index    bleve.Index
	batch    *bleve.Batch
	seq      int
	replaced map[string]bool
}

func NewBleveIndexer(path string) (*BleveIndexer, error) {
	var (
		index bleve.Index
		err   error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		index, err = bleve.New(path, recordMapping())
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}
	return &BleveIndexer{
		index:    index,
		batch:    index.NewBatch(),
		replaced: make(map[string]bool),
	}, nil
}

func (b *BleveIndexer) IndexRecord(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.replaced[doc.Module] {
		if err := b.dropModule(ctx, doc.Module); err != nil {
			return err
		}
		b.replaced[doc.Module] = true
	}

	b.seq++
	id := fmt.Sprintf("%s/%d", doc.Module, b.seq)
	rec := bleveRecord{
		Name:       doc.Name,
		Location:   doc.Location,
		SearchKeys: doc.SearchKeys,
		Module:     doc.Module,
	}
	if doc.Description != nil {
		rec.Description = *doc.Description
	}
	if err := b.batch.Index(id, rec); err != nil {
		return fmt.Errorf("index record %s: %w", doc.Name, err)
	}
	if b.batch.Size() >= bleveBatchSize {
		return b.flush()
	}
	return nil
}

// dropModule deletes every document already indexed for module.
func (b *BleveIndexer) dropModule(ctx context.Context, module string) error {
	q := bleve.NewTermQuery(module)
	q.SetField("module")
	for {
		res, err := b.index.SearchInContext(ctx, bleve.NewSearchRequestOptions(q, bleveBatchSize, 0, false))
		if err != nil {
			return fmt.Errorf("find module %s: %w", module, err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		del := b.index.NewBatch()
		for _, hit := range res.Hits {
			del.Delete(hit.ID)
		}
		if err := b.index.Batch(del); err != nil {
			return fmt.Errorf("clear module %s: %w", module, err)
		}
	}
}

func (b *BleveIndexer) flush() error {
	if b.batch.Size() == 0 {
		return nil
	}
	if err := b.index.Batch(b.batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	b.batch = b.index.NewBatch()
	return nil
}

func (b *BleveIndexer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.flush(); err != nil {
		_ = b.index.Close()
		return err
	}
	return b.index.Close()
}

type BleveSearcher struct {
	index bleve.Index
}

func NewBleveSearcher(path string) (*BleveSearcher, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}
	return &BleveSearcher{index: index}, nil
}

func (b *BleveSearcher) Close() error {
	return b.index.Close()
}

func (b *BleveSearcher) Search(ctx context.Context, queryString string, module string, limit int, offset int) (SearchResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	q := buildQuery(queryString, module)
	if q == nil {
		return SearchResponse{Results: []Result{}}, nil
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.Fields = resultFields
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search query: %w", err)
	}

	resp := SearchResponse{Total: res.Total, Results: make([]Result, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		var r Result
		if v, ok := hit.Fields["name"].(string); ok {
			r.Name = v
		}
		if v, ok := hit.Fields["description"].(string); ok {
			r.Description = v
		}
		if v, ok := hit.Fields["location"].(string); ok {
			r.Location = v
		}
		if v, ok := hit.Fields["module"].(string); ok {
			r.Module = v
		}
		resp.Results = append(resp.Results, r)
	}
	return resp, nil
}

// buildQuery matches the text against names and search keys, either as
// analysed terms or as a prefix of a name, optionally restricted to one
// module. It returns nil for blank input.
func buildQuery(text string, module string) query.Query {
	terms := sanitizeTerms(text)
	if len(terms) == 0 {
		return nil
	}

	var must []query.Query
	for _, t := range terms {
		name := bleve.NewMatchQuery(t)
		name.SetField("name")
		keys := bleve.NewMatchQuery(t)
		keys.SetField("searchKeys")
		prefix := bleve.NewPrefixQuery(t)
		prefix.SetField("name")
		must = append(must, bleve.NewDisjunctionQuery(name, keys, prefix))
	}
	if module != "" {
		m := bleve.NewTermQuery(module)
		m.SetField("module")
		must = append(must, m)
	}
	return bleve.NewConjunctionQuery(must...)
}
