package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

type FSStorage struct {
	Root string
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Root: root}
}

func (s *FSStorage) WriteFile(ctx context.Context, destPath string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeFile(destPath, content)
}

// WriteGzip compresses content and writes it to destPath.
func (s *FSStorage) WriteGzip(ctx context.Context, destPath string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := gw.Write(content); err != nil {
		_ = gw.Close()
		return fmt.Errorf("compress %s: %w", destPath, err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return s.writeFile(destPath, buf.Bytes())
}

// CopyFile copies the file at src to destPath.
func (s *FSStorage) CopyFile(ctx context.Context, destPath string, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()
	content, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return s.writeFile(destPath, content)
}

// CheckCache reports whether module was last built from inputs with digest.
func (s *FSStorage) CheckCache(module string, digest string) bool {
	data, err := os.ReadFile(s.cachePath(module))
	return err == nil && string(data) == digest
}

func (s *FSStorage) WriteCache(ctx context.Context, module string, digest string) error {
	if module == "" {
		return fmt.Errorf("cache module required")
	}
	return s.writeFileAbsolute(s.cachePath(module), []byte(digest))
}

func (s *FSStorage) cachePath(module string) string {
	return filepath.Join(s.Root, ".cache", module)
}

func (s *FSStorage) writeFile(destPath string, content []byte) error {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(destPath))
	return s.writeFileAbsolute(fullPath, content)
}

func (s *FSStorage) writeFileAbsolute(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// Remove any existing file or symlink so os.WriteFile does not
	// follow a stale symlink left by a previous build.
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
