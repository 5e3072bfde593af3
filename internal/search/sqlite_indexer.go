package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
)

// SQLiteIndexer writes documents into an FTS5 index. The documents of one
// module replace everything previously indexed for that module, in a single
// transaction per module; other modules are left alone.
type SQLiteIndexer struct {
	mu         sync.Mutex
	db         *sql.DB
	insertStmt *sql.Stmt
	deleteStmt *sql.Stmt

	tx       *sql.Tx
	txInsert *sql.Stmt
	module   string // module of the open transaction
	cleared  bool   // the open transaction deleted the module's old records
	replaced map[string]bool
}

func NewSQLiteIndexer(path string) (*SQLiteIndexer, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	insert, err := db.Prepare(`INSERT INTO records (module, name, description, location, search_keys) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	del, err := db.Prepare(`DELETE FROM records WHERE module = ?`)
	if err != nil {
		_ = insert.Close()
		_ = db.Close()
		return nil, fmt.Errorf("prepare delete: %w", err)
	}

	return &SQLiteIndexer{
		db:         db,
		insertStmt: insert,
		deleteStmt: del,
		replaced:   make(map[string]bool),
	}, nil
}

func (s *SQLiteIndexer) IndexRecord(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil || s.module != doc.Module {
		if err := s.commit(); err != nil {
			return err
		}
		if err := s.begin(ctx, doc.Module); err != nil {
			return err
		}
	}

	var description sql.NullString
	if doc.Description != nil {
		description = sql.NullString{String: *doc.Description, Valid: true}
	}
	keys := strings.Join(doc.SearchKeys, " ")
	if _, err := s.txInsert.ExecContext(ctx, doc.Module, doc.Name, description, doc.Location, keys); err != nil {
		s.rollback()
		return fmt.Errorf("index record %s: %w", doc.Name, err)
	}
	return nil
}

// begin opens the transaction for module, clearing its old records the
// first time the module is seen.
func (s *SQLiteIndexer) begin(ctx context.Context, module string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	s.cleared = !s.replaced[module]
	if s.cleared {
		if _, err := tx.Stmt(s.deleteStmt).ExecContext(ctx, module); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear module %s: %w", module, err)
		}
		s.replaced[module] = true
	}
	s.tx = tx
	s.txInsert = tx.Stmt(s.insertStmt)
	s.module = module
	return nil
}

func (s *SQLiteIndexer) commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	s.txInsert = nil
	if err != nil {
		return fmt.Errorf("commit module %s: %w", s.module, err)
	}
	return nil
}

// rollback abandons the open transaction so a failed module keeps its
// previous records.
func (s *SQLiteIndexer) rollback() {
	if s.tx == nil {
		return
	}
	_ = s.tx.Rollback()
	s.tx = nil
	s.txInsert = nil
	if s.cleared {
		delete(s.replaced, s.module)
	}
}

func (s *SQLiteIndexer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.commit()
	_ = s.insertStmt.Close()
	_ = s.deleteStmt.Close()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
