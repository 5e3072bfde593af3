package search

import (
	"context"
	"fmt"

	"github.com/canonical/docsearch/internal/searchbar"
)

// IndexRecords adds records to indexer as documents of module.
func IndexRecords(ctx context.Context, indexer Indexer, module string, records []searchbar.SearchRecord) error {
	for _, rec := range records {
		doc := Document{
			Name:        rec.Name,
			Description: rec.Description,
			Location:    rec.Location,
			SearchKeys:  rec.SearchKeys,
			Module:      module,
		}
		if err := indexer.IndexRecord(ctx, doc); err != nil {
			return fmt.Errorf("index record %s: %w", rec.Name, err)
		}
	}
	return nil
}
