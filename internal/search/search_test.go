package search

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/canonical/docsearch/internal/config"
)

func strPtr(s string) *string { return &s }

var testDocs = []Document{
	{Name: "fun bar(): Int", Description: strPtr("pkg.Foo.bar"), Location: "pkg/Foo/bar.html", SearchKeys: []string{"bar", "fun bar(): Int", "pkg.Foo.bar"}, Module: "core"},
	{Name: "class Foo", Description: strPtr("pkg.Foo"), Location: "pkg/Foo/index.html", SearchKeys: []string{"Foo", "class Foo", "pkg.Foo"}, Module: "core"},
	{Name: "fun baz()", Description: nil, Location: "ext/baz.html", SearchKeys: []string{"baz", "fun baz()", "ext.baz"}, Module: "extras"},
}

func writeIndex(t *testing.T, backend config.Backend, path string, docs []Document) {
	t.Helper()
	idx, err := NewIndexer(backend, path)
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	for _, doc := range docs {
		if err := idx.IndexRecord(context.Background(), doc); err != nil {
			t.Fatalf("IndexRecord: %v", err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close indexer: %v", err)
	}
}

func buildIndex(t *testing.T, backend config.Backend) Searcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index")
	writeIndex(t, backend, path, testDocs)

	s, err := NewSearcher(backend, path)
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func locations(resp SearchResponse) []string {
	var out []string
	for _, r := range resp.Results {
		out = append(out, r.Location)
	}
	slices.Sort(out)
	return out
}

func TestBackends(t *testing.T) {
	for _, backend := range []config.Backend{config.BackendSQLite, config.BackendBleve} {
		t.Run(string(backend), func(t *testing.T) {
			s := buildIndex(t, backend)
			ctx := context.Background()

			tests := []struct {
				name   string
				query  string
				module string
				want   []string
			}{
				{"by name", "bar", "", []string{"pkg/Foo/bar.html"}},
				{"prefix", "ba", "", []string{"ext/baz.html", "pkg/Foo/bar.html"}},
				{"module filter", "ba", "extras", []string{"ext/baz.html"}},
				{"case insensitive", "BAZ", "", []string{"ext/baz.html"}},
				{"operators only", "AND OR", "", nil},
				{"blank", "   ", "", nil},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					resp, err := s.Search(ctx, tt.query, tt.module, 10, 0)
					if err != nil {
						t.Fatalf("Search: %v", err)
					}
					if got := locations(resp); !slices.Equal(got, tt.want) {
						t.Errorf("locations = %v, want %v", got, tt.want)
					}
					if resp.Results == nil {
						t.Error("results should be an empty slice, not nil")
					}
					if int(resp.Total) != len(tt.want) {
						t.Errorf("total = %d, want %d", resp.Total, len(tt.want))
					}
				})
			}

			resp, err := s.Search(ctx, "bar", "core", 10, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Results) != 1 {
				t.Fatalf("results = %+v", resp.Results)
			}
			got := resp.Results[0]
			if got.Name != "fun bar(): Int" || got.Description != "pkg.Foo.bar" || got.Module != "core" {
				t.Errorf("result = %+v", got)
			}

			resp, err = s.Search(ctx, "baz", "", 10, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Results) != 1 || resp.Results[0].Description != "" {
				t.Errorf("record without description = %+v", resp.Results)
			}
		})
	}
}

func TestReindexReplacesOnlyItsModule(t *testing.T) {
	for _, backend := range []config.Backend{config.BackendSQLite, config.BackendBleve} {
		t.Run(string(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "index")
			writeIndex(t, backend, path, testDocs)

			// Rebuilding core with a single record drops its old records
			// and keeps the extras module.
			writeIndex(t, backend, path, []Document{
				{Name: "fun qux()", Description: strPtr("pkg.qux"), Location: "pkg/qux.html", SearchKeys: []string{"qux"}, Module: "core"},
			})

			s, err := NewSearcher(backend, path)
			if err != nil {
				t.Fatalf("NewSearcher: %v", err)
			}
			defer func() { _ = s.Close() }()
			ctx := context.Background()

			tests := []struct {
				query string
				want  []string
			}{
				{"qux", []string{"pkg/qux.html"}},
				{"bar", nil},
				{"foo", nil},
				{"baz", []string{"ext/baz.html"}},
			}
			for _, tt := range tests {
				resp, err := s.Search(ctx, tt.query, "", 10, 0)
				if err != nil {
					t.Fatalf("Search(%q): %v", tt.query, err)
				}
				if got := locations(resp); !slices.Equal(got, tt.want) {
					t.Errorf("Search(%q) locations = %v, want %v", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestSQLiteIndexerKeepsModuleOnFailedReindex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.db")
	writeIndex(t, config.BackendSQLite, path, testDocs)

	idx, err := NewSQLiteIndexer(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.IndexRecord(ctx, testDocs[0]); err == nil {
		t.Error("expected error for cancelled context")
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := NewSQLiteSearcher(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	resp, err := s.Search(context.Background(), "bar", "core", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("core records after failed reindex = %+v", resp)
	}
}

func TestNoBackend(t *testing.T) {
	if _, err := NewIndexer(config.BackendNone, ""); !errors.Is(err, ErrNoBackend) {
		t.Errorf("NewIndexer(none) error = %v", err)
	}
	if _, err := NewSearcher(config.BackendNone, ""); !errors.Is(err, ErrNoBackend) {
		t.Errorf("NewSearcher(none) error = %v", err)
	}
	if _, err := NewIndexer("elastic", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bar", `"bar"*`},
		{"Foo bar", `"foo"* "bar"*`},
		{"pkg.Foo#bar()", `"pkg.foo"* "bar"*`},
		{"a AND b", `"a"* "b"*`},
		{"NOT", ""},
		{`"*:`, ""},
	}
	for _, tt := range tests {
		if got := sanitizeQuery(tt.in); got != tt.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
