package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/pkg/types"
)

// DefaultFilename is the category file written into each image directory
const DefaultFilename = ".pictag.json"

// FileStore keeps the document in a JSON or YAML file inside the image
// directory. Files ending in .yaml or .yml use YAML, anything else JSON.
type FileStore struct {
	filename string
}

// NewFileStore creates a file store; an empty filename means DefaultFilename
func NewFileStore(filename string) *FileStore {
	if filename == "" {
		filename = DefaultFilename
	}
	return &FileStore{filename: filename}
}

func (s *FileStore) path(directory, filename string) string {
	if filename == "" {
		filename = s.filename
	}
	return filepath.Join(directory, filename)
}

// LoadConfig reads the document
func (s *FileStore) LoadConfig(ctx context.Context, directory, filename string) (*types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDirectory(directory); err != nil {
		return nil, err
	}

	path := s.path(directory, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("category file not found", path, errors.ConfigNotFound, err)
		}
		return nil, errors.NewConfigError("failed to read category file", path, errors.TransportUnavailable, err)
	}

	doc := &types.Document{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, doc)
	} else {
		err = json.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, errors.NewConfigError("failed to parse category file", path, errors.InvalidConfig, err)
	}

	log.LogWithFields(
		log.F("path", path),
		log.F("categories", len(doc.Categories)),
		log.F("images", len(doc.ImageCategories)),
		log.F("hotkeys", len(doc.Hotkeys)),
	).Debug("Loaded category file")
	return doc, nil
}

// SaveConfig writes the document through a temporary file so a failed
// write never leaves a truncated file behind
func (s *FileStore) SaveConfig(ctx context.Context, directory, filename string, doc *types.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDirectory(directory); err != nil {
		return err
	}

	path := s.path(directory, filename)
	doc = normalizeDocument(doc)
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return errors.NewConfigError("failed to encode category file", path, errors.InvalidConfig, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pictag-*.tmp")
	if err != nil {
		return errors.NewFileError("failed to create temporary file", path, errors.FileOperationFailed, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewFileError("failed to write category file", path, errors.FileOperationFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.NewFileError("failed to sync category file", path, errors.FileOperationFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewFileError("failed to close category file", path, errors.FileOperationFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.NewFileError("failed to replace category file", path, errors.FileOperationFailed, err)
	}

	log.LogWithFields(log.F("path", path), log.F("bytes", len(data))).Debug("Saved category file")
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// checkDirectory maps an unreachable directory to TransportUnavailable
func checkDirectory(directory string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return errors.NewConfigError("directory unavailable", directory, errors.TransportUnavailable, err)
	}
	if !info.IsDir() {
		return errors.NewConfigError("not a directory", directory, errors.TransportUnavailable, nil)
	}
	return nil
}
