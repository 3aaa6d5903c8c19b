// Package assets resolves the static files the app needs at startup: the
// survey snapshot and the world geography file. A file is used from its
// local path when present, otherwise downloaded once from the configured
// base URL into a cache directory.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// Known paths relative to the base URL
const (
	DatasetPath   = "data/survey.duckdb"
	GeographyPath = "data/world-110m.geojson"
)

// Fetcher downloads assets into a cache directory
type Fetcher struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	logger   *zap.Logger
}

// NewFetcher creates a fetcher. An empty baseURL disables downloads.
func NewFetcher(baseURL, cacheDir string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 2 * time.Minute},
		logger:   logger,
	}
}

// Resolve returns a local file for rel. local wins when it exists; a cached
// download is reused; otherwise the file is fetched.
func (f *Fetcher) Resolve(ctx context.Context, rel, local string) (string, error) {
	if local != "" {
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if f.cacheDir == "" {
		return "", fmt.Errorf("asset %s not found locally and no cache dir configured", rel)
	}
	cached := filepath.Join(f.cacheDir, filepath.FromSlash(rel))
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	if f.baseURL == "" {
		return "", fmt.Errorf("asset %s not found locally and no base url configured", rel)
	}
	if err := f.download(ctx, rel, cached); err != nil {
		return "", err
	}
	return cached, nil
}

func (f *Fetcher) download(ctx context.Context, rel, dest string) error {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	u.Path = path.Join(u.Path, rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rel, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", rel, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := xxh3.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move %s into cache: %w", rel, err)
	}

	f.logger.Info("asset downloaded",
		zap.String("asset", rel),
		zap.String("size", humanize.Bytes(uint64(n))),
		zap.String("xxh3", fmt.Sprintf("%016x", h.Sum64())),
		zap.Duration("took", time.Since(start)))
	return nil
}
