package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gabriel-vasile/mimetype"

	"pictag/internal/errors"
	"pictag/internal/log"
)

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
}

const defaultMIME = "image/png"

// DefaultCacheBytes bounds the data URL cache
const DefaultCacheBytes = 256 << 20

// Loader reads image files as data URLs. Results are cached until the
// file's size or modification time changes.
type Loader struct {
	cache *ristretto.Cache[string, string]
}

// NewLoader creates a loader whose cache holds up to maxBytes of data URLs.
// A maxBytes of zero disables caching.
func NewLoader(maxBytes int64) (*Loader, error) {
	if maxBytes <= 0 {
		return &Loader{}, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 10_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create image cache")
	}
	return &Loader{cache: cache}, nil
}

// Close releases the cache
func (l *Loader) Close() {
	if l.cache != nil {
		l.cache.Close()
	}
}

// LoadImageData returns path as "data:<mime>;base64,<payload>"
func (l *Loader) LoadImageData(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileError("image does not exist", path, errors.FileNotFound, err)
		}
		return "", errors.NewFileError("failed to stat image", path, errors.FileAccessDenied, err)
	}
	if !fi.Mode().IsRegular() {
		return "", errors.NewFileError("path is not a file", path, errors.InvalidPath, nil)
	}

	key := fmt.Sprintf("%s|%d|%d", path, fi.ModTime().UnixNano(), fi.Size())
	if l.cache != nil {
		if url, ok := l.cache.Get(key); ok {
			return url, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewFileError("failed to read image", path, errors.FileOperationFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url := "data:" + MIMEType(path, data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	if l.cache != nil {
		l.cache.Set(key, url, int64(len(url)))
	}
	log.LogWithFields(log.F("path", path), log.F("bytes", len(data))).Debug("Loaded image data")
	return url, nil
}

// MIMEType picks the MIME type for path: by extension first, then by
// sniffing data, falling back to image/png
func MIMEType(path string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if m, ok := mimeByExt[ext]; ok {
		return m
	}
	if len(data) > 0 {
		if detected := mimetype.Detect(data); strings.HasPrefix(detected.String(), "image/") {
			return detected.String()
		}
	}
	return defaultMIME
}
