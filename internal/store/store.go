// Package store persists a directory's categories, assignments and hotkeys
// and composes that with the image file operations into one gateway.
package store

import (
	"context"
	"strings"

	"pictag/internal/errors"
	"pictag/pkg/types"
)

// Backend names accepted by NewConfigStore
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ConfigStore reads and writes the category document of one directory.
// An empty filename selects the store's default.
type ConfigStore interface {
	// LoadConfig fails with a ConfigNotFound error when nothing has been
	// saved yet, and with TransportUnavailable when the directory cannot
	// be reached
	LoadConfig(ctx context.Context, directory, filename string) (*types.Document, error)
	SaveConfig(ctx context.Context, directory, filename string, doc *types.Document) error
}

// ImageDeleter moves an image file out of the collection
type ImageDeleter interface {
	DeleteImageFile(ctx context.Context, path string) error
}

// ImageLoader returns the encoded bytes of an image as a data URL
type ImageLoader interface {
	LoadImageData(ctx context.Context, path string) (string, error)
}

// Gateway is every persistence call the session makes
type Gateway interface {
	ConfigStore
	ImageDeleter
	ImageLoader
}

type gateway struct {
	ConfigStore
	ImageDeleter
	ImageLoader
}

// NewGateway combines the three collaborators
func NewGateway(config ConfigStore, deleter ImageDeleter, loader ImageLoader) Gateway {
	return &gateway{ConfigStore: config, ImageDeleter: deleter, ImageLoader: loader}
}

// NewConfigStore returns the backend named by backend. filename overrides
// the backend's default file name when not empty.
func NewConfigStore(backend, filename string) (ConfigStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(filename), nil
	case BackendSQLite:
		return NewSQLiteStore(filename), nil
	default:
		return nil, errors.NewConfigError("unknown store backend: "+backend, "store.backend", errors.InvalidConfig, nil)
	}
}

// normalizeDocument replaces nil slices so encoders write empty lists
func normalizeDocument(doc *types.Document) *types.Document {
	out := &types.Document{}
	if doc != nil {
		*out = *doc
	}
	if out.Categories == nil {
		out.Categories = []types.Category{}
	}
	if out.ImageCategories == nil {
		out.ImageCategories = []types.ImageCategoryEntry{}
	}
	if out.Hotkeys == nil {
		out.Hotkeys = []types.HotkeyConfig{}
	}
	return out
}
