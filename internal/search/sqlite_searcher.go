package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type SQLiteSearcher struct {
	db *sql.DB
}

func NewSQLiteSearcher(path string) (*SQLiteSearcher, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteSearcher{db: db}, nil
}

func (s *SQLiteSearcher) Close() error {
	return s.db.Close()
}

func (s *SQLiteSearcher) Search(ctx context.Context, queryString string, module string, limit int, offset int) (SearchResponse, error) {
	queryString = sanitizeQuery(queryString)
	if queryString == "" {
		return SearchResponse{Results: []Result{}}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT r.name, r.description, r.location, r.module, COUNT(*) OVER() AS total
		 FROM records_fts f
		 JOIN records r ON r.id = f.rowid
		 WHERE records_fts MATCH ?`
	args := []any{queryString}

	if module != "" {
		query += ` AND r.module = ?`
		args = append(args, module)
	}

	query += ` ORDER BY f.rank, r.name LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var resp SearchResponse
	resp.Results = make([]Result, 0)

	for rows.Next() {
		var r Result
		var description sql.NullString
		var total uint64
		if err := rows.Scan(&r.Name, &description, &r.Location, &r.Module, &total); err != nil {
			return SearchResponse{}, fmt.Errorf("scan result: %w", err)
		}
		r.Description = description.String
		resp.Total = total
		resp.Results = append(resp.Results, r)
	}
	if err := rows.Err(); err != nil {
		return SearchResponse{}, fmt.Errorf("iterate results: %w", err)
	}

	return resp, nil
}

// sanitizeQuery turns free text into an FTS5 query of quoted prefix terms.
func sanitizeQuery(q string) string {
	terms := sanitizeTerms(q)
	if len(terms) == 0 {
		return ""
	}
	for i, t := range terms {
		terms[i] = `"` + t + `"*`
	}
	return strings.Join(terms, " ")
}

// sanitizeTerms splits free text into lower-case search terms. Boolean
// operators and punctuation other than '-', '_' and '.' are dropped.
func sanitizeTerms(q string) []string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(q) {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var terms []string
	for _, t := range strings.Fields(b.String()) {
		upper := strings.ToUpper(t)
		if upper == "AND" || upper == "OR" || upper == "NOT" {
			continue
		}
		terms = append(terms, strings.ToLower(t))
	}
	return terms
}
