// Package fetchcache provides a disk-backed conditional HTTP fetcher shared
// by the spreadsheet and ICS source clients. It honors ETag/Last-Modified
// and falls back to the cached body on network errors or non-OK responses,
// so a flaky upstream degrades to stale data instead of an empty dashboard.
package fetchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "classdash/internal/log"
)

// Result is the outcome of one fetch.
type Result struct {
	Body      []byte
	FromCache bool
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher fetches URLs with conditional requests and a per-URL disk cache.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// New creates a Fetcher rooted at cacheDir. An empty cacheDir falls back to
// a relative directory so development runs work without extra setup.
func New(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/fetch-cache"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// Fetch retrieves url, honoring ETag and Last-Modified from prior fetches.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Result, error) {
	if url == "" {
		return Result{}, errors.New("fetchcache: url is empty")
	}

	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return Result{}, err
	}

	meta, _ := f.loadMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.dat"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("fetch network error, using cached body", err, "url", RedactURL(url))
			return Result{Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return Result{}, readErr
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("fetch cache save failed", err, "url", RedactURL(url))
		}
		return Result{Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return Result{}, errors.New("fetchcache: 304 Not Modified but no cached body")
		}
		return Result{Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("fetch non-OK, using cached body", errors.New(resp.Status), "url", RedactURL(url), "status", resp.StatusCode)
			return Result{Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, errors.New(resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.dat"), body, 0o600); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// RedactURL hides path and query of a URL for logging. Spreadsheet IDs and
// calendar tokens are capability URLs, so only the host survives.
func RedactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	schemeEnd := strings.Index(u, "://")
	if schemeEnd < 0 {
		return redactedSuffix
	}
	rest := u[schemeEnd+3:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return u
	}
	return u[:schemeEnd+3+slash] + redactedSuffix
}
