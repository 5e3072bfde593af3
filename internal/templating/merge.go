// Package templating combines the delayed search directives of several
// module outputs into one search script.
package templating

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/docsearch/internal/search"
	"github.com/canonical/docsearch/internal/searchbar"
	"github.com/canonical/docsearch/internal/storage"
)

// ErrNotDirective is returned for a module whose search script is not a
// delayed directive, e.g. one built in immediate mode.
var ErrNotDirective = errors.New("not a search directive")

// Merger writes the combined search script of a multi-module site and,
// when Indexer is set, the site-level server-side index.
type Merger struct {
	Indexer     search.Indexer
	Precompress bool
	Workers     int
	Logger      *slog.Logger
}

// Merge reads scripts/pages.js of every module directory under outDir,
// prefixes each record location with its module directory, and writes the
// sorted union as an immediate script to outDir/scripts/pages.js. The same
// prefixed records are added to Indexer under their module name. It
// returns the number of records written.
func (m *Merger) Merge(ctx context.Context, outDir string, moduleDirs []string) (int, error) {
	directives := make([]searchbar.AddToSearch, len(moduleDirs))

	g, gctx := errgroup.WithContext(ctx)
	if m.Workers > 0 {
		g.SetLimit(m.Workers)
	}
	for i, dir := range moduleDirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := ReadDirective(filepath.Join(outDir, filepath.FromSlash(dir), filepath.FromSlash(searchbar.PagesScriptPath)))
			if err != nil {
				return err
			}
			directives[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var records []searchbar.SearchRecord
	for i, d := range directives {
		prefix := path.Clean(filepath.ToSlash(moduleDirs[i]))
		prefixed := make([]searchbar.SearchRecord, 0, len(d.Elements))
		for _, r := range d.Elements {
			if r.Location != "" {
				r.Location = path.Join(prefix, r.Location)
			}
			prefixed = append(prefixed, r)
		}
		records = append(records, prefixed...)
		if m.Indexer != nil {
			module := d.ModuleName
			if module == "" {
				module = prefix
			}
			if err := search.IndexRecords(ctx, m.Indexer, module, prefixed); err != nil {
				return 0, fmt.Errorf("index %s: %w", moduleDirs[i], err)
			}
		}
		if m.Logger != nil {
			m.Logger.Debug("merged module", "module", d.ModuleName, "dir", moduleDirs[i], "records", len(d.Elements))
		}
	}
	searchbar.SortRecords(records)

	text, err := searchbar.Render(records, false, "")
	if err != nil {
		return 0, err
	}
	store := storage.NewFSStorage(outDir)
	if err := store.WriteFile(ctx, searchbar.PagesScriptPath, []byte(text)); err != nil {
		return 0, fmt.Errorf("write merged search script: %w", err)
	}
	if m.Precompress {
		if err := store.WriteGzip(ctx, searchbar.PagesScriptPath+".gz", []byte(text)); err != nil {
			return 0, fmt.Errorf("write merged search script: %w", err)
		}
	}
	if m.Logger != nil {
		m.Logger.Info("search scripts merged", "modules", len(moduleDirs), "records", len(records))
	}
	return len(records), nil
}

// ReadDirective decodes the delayed search directive stored at path.
func ReadDirective(path string) (searchbar.AddToSearch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return searchbar.AddToSearch{}, fmt.Errorf("read search script: %w", err)
	}
	var d searchbar.AddToSearch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return searchbar.AddToSearch{}, fmt.Errorf("%s: %w: %v", path, ErrNotDirective, err)
	}
	if dec.More() {
		return searchbar.AddToSearch{}, fmt.Errorf("%s: %w: trailing data", path, ErrNotDirective)
	}
	return d, nil
}
