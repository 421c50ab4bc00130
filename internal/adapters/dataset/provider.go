// Package dataset provides the municipality table sources: a local cache
// file, the remote CSV, and a cache-first combination of both.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/metrics"
)

// DefaultFetchTimeout bounds a single download of the remote table.
const DefaultFetchTimeout = 30 * time.Second

// WarmReader reads the table from a local cache file.
type WarmReader struct {
	Path string
}

// Fetch returns the file contents.
func (w WarmReader) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", w.Path, err)
	}
	return data, nil
}

// ColdFetcher downloads the table over HTTP and, when CachePath is set,
// persists the body so later loads can skip the download.
type ColdFetcher struct {
	URL       string
	CachePath string
	Client    *http.Client
}

// NewColdFetcher creates a fetcher with its own client bounded by timeout.
func NewColdFetcher(url, cachePath string, timeout time.Duration) *ColdFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &ColdFetcher{
		URL:       url,
		CachePath: cachePath,
		Client:    &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the table. Every failure, including a timeout or a non-2xx
// status, wraps domain.ErrDownloadFailed. A failure to write the cache file
// is logged and does not fail the fetch.
func (c *ColdFetcher) Fetch(ctx context.Context) ([]byte, error) {
	data, err := c.download(ctx)
	if err != nil {
		metrics.DatasetDownloads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	metrics.DatasetDownloads.WithLabelValues("ok").Inc()

	if c.CachePath != "" {
		if err := writeAtomic(c.CachePath, data); err != nil {
			slog.WarnContext(ctx, "dataset cache write failed", "path", c.CachePath, "error", err)
		} else {
			slog.InfoContext(ctx, "dataset cached", "path", c.CachePath, "bytes", len(data))
		}
	}
	return data, nil
}

func (c *ColdFetcher) download(ctx context.Context) ([]byte, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	slog.InfoContext(ctx, "downloading municipality dataset", "url", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, c.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// writeAtomic writes data next to path and renames it into place, so a
// crash never leaves a truncated cache file behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// CacheFirst reads the local file when it exists and downloads otherwise.
type CacheFirst struct {
	Warm WarmReader
	Cold *ColdFetcher
}

// NewCacheFirst creates a cache-first provider for path backed by url.
func NewCacheFirst(path, url string, timeout time.Duration) *CacheFirst {
	return &CacheFirst{
		Warm: WarmReader{Path: path},
		Cold: NewColdFetcher(url, path, timeout),
	}
}

// Fetch implements ports.DatasetProvider.
func (p *CacheFirst) Fetch(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(p.Warm.Path); err == nil {
		slog.InfoContext(ctx, "using cached municipality dataset", "path", p.Warm.Path)
		return p.Warm.Fetch(ctx)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.WarnContext(ctx, "dataset cache unreadable, downloading", "path", p.Warm.Path, "error", err)
	}
	return p.Cold.Fetch(ctx)
}

// Static serves a fixed table, mainly for tests.
type Static []byte

// Fetch returns the bytes.
func (s Static) Fetch(context.Context) ([]byte, error) {
	return []byte(s), nil
}
