// Package asset fetches and decodes the product model.
package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxAssetSize bounds a single fetch.
const maxAssetSize = 256 << 20

// Fetcher resolves asset names against a deployment base and returns their
// bytes. The base is either a directory or an http(s) URL.
type Fetcher struct {
	base   string
	client *http.Client
	cache  *Cache
}

// NewFetcher creates a fetcher for base. An empty base resolves names as given.
func NewFetcher(base string) *Fetcher {
	return &Fetcher{
		base:   base,
		client: &http.Client{Timeout: 60 * time.Second},
		cache:  NewCache(),
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve returns the location name refers to. With a base set, names are
// relative to it whatever its kind; a leading slash means the base root, as
// in "/3dmodel.glb". Without a base, names are used as given.
func (f *Fetcher) Resolve(name string) string {
	if isURL(name) || f.base == "" {
		return name
	}
	rel := strings.TrimLeft(filepath.ToSlash(name), "/")
	if isURL(f.base) {
		loc, err := url.JoinPath(f.base, rel)
		if err != nil {
			return strings.TrimSuffix(f.base, "/") + "/" + rel
		}
		return loc
	}
	return filepath.Join(f.base, filepath.FromSlash(rel))
}

// LocalPath returns the file path name resolves to, or false when it
// resolves to a URL.
func (f *Fetcher) LocalPath(name string) (string, bool) {
	loc := f.Resolve(name)
	if isURL(loc) {
		return "", false
	}
	return loc, true
}

// Fetch returns the bytes of name, from the cache when possible.
// Failures are *LoadError.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	loc := f.Resolve(name)
	if data, ok := f.cache.Get(loc); ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	if isURL(loc) {
		data, err = f.fetchHTTP(ctx, loc)
	} else {
		data, err = os.ReadFile(loc)
	}
	if err != nil {
		return nil, &LoadError{Location: loc, Err: err}
	}

	f.cache.Set(loc, data)
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset larger than %d bytes", maxAssetSize)
	}
	return data, nil
}

// Invalidate drops the cached bytes for name.
func (f *Fetcher) Invalidate(name string) {
	f.cache.Delete(f.Resolve(name))
}

// Cache exposes the fetcher's cache.
func (f *Fetcher) Cache() *Cache { return f.cache }
