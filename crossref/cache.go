package crossref

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// CachingDoer wraps a Doer and keeps successful GET response bodies on disk,
// keyed by the SHA-256 of the request URL. Repeated conversions of the same
// manuscript then make no network calls.
type CachingDoer struct {
	Dir  string
	Next Doer
	Log  *zap.Logger
}

// NewCachingDoer creates the cache directory when needed.
func NewCachingDoer(dir string, next Doer) (*CachingDoer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &CachingDoer{Dir: dir, Next: next}, nil
}

// Do serves the request from the cache or forwards it and stores a 200
// response.
func (c *CachingDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.Next.Do(req)
	}

	path := filepath.Join(c.Dir, cacheKey(req.URL.String()))
	if data, err := os.ReadFile(path); err == nil {
		c.logger().Debug("crossref cache hit", zap.String("url", req.URL.String()))
		return cachedResponse(req, make(http.Header), data), nil
	}

	resp, err := c.Next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		c.logger().Warn("crossref cache write failed", zap.String("path", path), zap.Error(err))
	}
	return cachedResponse(req, resp.Header.Clone(), data), nil
}

func (c *CachingDoer) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func cachedResponse(req *http.Request, h http.Header, data []byte) *http.Response {
	return &http.Response{
		Request:       req,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(data)),
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		ContentLength: int64(len(data)),
	}
}

// writeAtomic writes through a temp file so readers never see a partial
// entry.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
