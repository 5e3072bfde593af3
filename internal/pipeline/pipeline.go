package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/canonical/docsearch/internal/location"
	"github.com/canonical/docsearch/internal/logging"
	"github.com/canonical/docsearch/internal/manifest"
	"github.com/canonical/docsearch/internal/pages"
	"github.com/canonical/docsearch/internal/render"
	"github.com/canonical/docsearch/internal/search"
	"github.com/canonical/docsearch/internal/searchbar"
	"github.com/canonical/docsearch/internal/sitemap"
	"github.com/canonical/docsearch/internal/storage"
)

type Runner struct {
	Installer        *searchbar.Installer
	Storage          *storage.FSStorage
	SitemapGenerator *sitemap.SitemapGenerator
	Reporter         *logging.Reporter
	Logger           *slog.Logger
	Workers          int
	Precompress      bool
	ForceProcess     bool

	// OpenIndexer opens the server-side index. It is called only when the
	// module is rebuilt, so a skipped build leaves the index untouched.
	OpenIndexer func() (search.Indexer, error)
	// IndexID names the index OpenIndexer writes, e.g. backend and path.
	// Changing it invalidates the cached digest.
	IndexID string

	mu     sync.Mutex
	status BuildStatus
}

// Run builds the module described by the manifest at manifestPath into
// the runner's storage. A build whose inputs match the cached digest is
// skipped unless ForceProcess is set.
func (r *Runner) Run(ctx context.Context, manifestPath string) (BuildStatus, error) {
	if r.Installer == nil || r.Storage == nil {
		return BuildStatus{}, errors.New("pipeline runner missing dependencies")
	}
	module := r.Installer.Config.ModuleName
	r.setStage("loading")
	r.mu.Lock()
	r.status.Module = module
	r.mu.Unlock()

	err := r.run(ctx, module, manifestPath)
	if err != nil {
		r.setStage("error")
	}
	return r.Status(), err
}

func (r *Runner) run(ctx context.Context, module, manifestPath string) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return &ManifestError{Err: fmt.Errorf("read manifest: %w", err)}
	}

	digest := r.digest(data)
	if !r.ForceProcess && r.Storage.CheckCache(module, digest) {
		if r.Logger != nil {
			r.Logger.Info("skipping unchanged module", "module", module)
		}
		r.setStage("skipped")
		return nil
	}

	root, err := manifest.Decode(bytes.NewReader(data), manifestPath)
	if err != nil {
		return &ManifestError{Err: err}
	}
	if r.Logger != nil {
		r.Logger.Info("manifest loaded", "module", module, "pages", len(pages.WithDescendants(root)))
	}

	var records []searchbar.SearchRecord
	installer := *r.Installer
	installer.OnRecords = func(recs []searchbar.SearchRecord) { records = recs }
	site := installer.Invoke(root)
	provider := location.New(site)

	r.setStage("rendering")
	writer := &render.Writer{
		Storage:     r.Storage,
		Locations:   provider,
		Precompress: r.Precompress,
		Workers:     r.Workers,
		Logger:      r.Logger,
	}
	stats, err := writer.Write(ctx, site)
	if err != nil {
		return fmt.Errorf("write site: %w", err)
	}
	r.mu.Lock()
	r.status.ContentPages = stats.ContentPages
	r.status.ResourcePages = stats.ResourcePages
	r.status.Records = len(records)
	r.mu.Unlock()

	if r.OpenIndexer != nil {
		r.setStage("indexing")
		if err := r.index(ctx, module, records); err != nil {
			return err
		}
	}

	if r.SitemapGenerator != nil {
		if err := r.SitemapGenerator.Generate(ctx, module, contentLocations(site, provider)); err != nil && r.Logger != nil {
			r.Logger.Error("sitemap generation failed", "error", err)
			// Non-fatal: don't fail the entire build for a sitemap error.
		}
	}

	if err := r.Storage.WriteCache(ctx, module, digest); err != nil {
		return fmt.Errorf("write cache for %s: %w", module, err)
	}

	r.mu.Lock()
	if r.Reporter != nil {
		r.status.Warnings = r.Reporter.Warnings()
	}
	s := r.status
	r.mu.Unlock()
	if s.Warnings > 0 && r.Logger != nil {
		r.Logger.Warn("build completed with warnings", "module", module, "count", s.Warnings)
	}
	if r.Logger != nil {
		r.Logger.Info("module done", "module", module, "content_pages", s.ContentPages, "records", s.Records)
	}
	r.setStage("done")
	return nil
}

func (r *Runner) index(ctx context.Context, module string, records []searchbar.SearchRecord) (err error) {
	indexer, err := r.OpenIndexer()
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer func() {
		if cerr := indexer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close index: %w", cerr)
		}
	}()
	return search.IndexRecords(ctx, indexer, module, records)
}

// Status returns a snapshot of the current build progress.
func (r *Runner) Status() BuildStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) setStage(stage string) {
	r.mu.Lock()
	r.status.Stage = stage
	r.mu.Unlock()
}

// digest identifies the build inputs: the manifest and every setting that
// changes the output.
func (r *Runner) digest(manifestData []byte) string {
	h := sha256.New()
	h.Write(manifestData)
	cfg := r.Installer.Config
	for _, part := range []string{
		cfg.ModuleName,
		strconv.FormatBool(cfg.DelayTemplateSubstitution),
		strconv.FormatBool(r.Precompress),
		r.IndexID,
	} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func contentLocations(site pages.Node, provider *location.Provider) []string {
	var locs []string
	for _, n := range pages.WithDescendants(site) {
		if _, ok := n.(*pages.ContentPage); !ok {
			continue
		}
		if loc, ok := provider.PathOf(n); ok {
			locs = append(locs, loc)
		}
	}
	return locs
}
