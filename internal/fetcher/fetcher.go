// Package fetcher downloads remote build inputs into a work directory.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

const maxAttempts = 3

type Fetcher struct {
	WorkDir string
	Client  *http.Client
	Logger  *slog.Logger
}

func New(workDir string) *Fetcher {
	return &Fetcher{
		WorkDir: workDir,
		Client:  http.DefaultClient,
	}
}

// IsRemote reports whether location is an http(s) URL rather than a
// local path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FetchManifest downloads the manifest at src and returns the path of the
// local copy. Gzip-compressed manifests (a ".gz" URL or a gzip
// Content-Type) are decompressed on the way. Transient failures are
// retried with a linear backoff.
func (f *Fetcher) FetchManifest(ctx context.Context, src string) (string, error) {
	if f.WorkDir == "" {
		f.WorkDir = os.TempDir()
	}
	if f.Client == nil {
		f.Client = http.DefaultClient
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse manifest url: %w", err)
	}
	fileName := strings.TrimSuffix(path.Base(u.Path), ".gz")
	if fileName == "" || fileName == "." || fileName == "/" {
		fileName = "manifest.json"
	}
	destPath := filepath.Join(f.WorkDir, fileName)

	if f.Logger != nil {
		f.Logger.Debug("downloading manifest", "url", src)
	}

	if err := os.MkdirAll(f.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if f.Logger != nil {
				f.Logger.Warn("retrying download", "url", src, "attempt", attempt+1, "error", lastErr)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		lastErr = f.download(ctx, src, destPath, strings.HasSuffix(u.Path, ".gz"))
		if lastErr == nil {
			return destPath, nil
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

func (f *Fetcher) download(ctx context.Context, src, destPath string, gzipped bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download manifest: status %s", resp.Status)
	}

	body := io.ReadCloser(resp.Body)
	ct := resp.Header.Get("Content-Type")
	if gzipped || strings.Contains(ct, "gzip") {
		body, err = wrapGzipReader(resp.Body)
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()
	}

	tmp, err := os.CreateTemp(f.WorkDir, ".manifest-*")
	if err != nil {
		return fmt.Errorf("create temp manifest file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write manifest file: %w", err)
	}
	_ = tmp.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename manifest file: %w", err)
	}
	return nil
}

func wrapGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return &gzipReadCloser{ReadCloser: r, Reader: gz}, nil
}

type gzipReadCloser struct {
	io.ReadCloser
	Reader *gzip.Reader
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.Reader.Read(p)
}

func (g *gzipReadCloser) Close() error {
	_ = g.Reader.Close()
	return g.ReadCloser.Close()
}
