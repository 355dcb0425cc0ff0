// Package media lists image files, reads their metadata, loads their
// bytes for display and moves deleted images to the trash.
package media

import (
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"pictag/internal/errors"
	"pictag/internal/log"
	"pictag/pkg/types"
)

// DefaultExtensions are the image types listed by a scan
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "svg", "ico"}

// DefaultMinSizeKB skips thumbnails and icons smaller than this
const DefaultMinSizeKB = 15

var registerExif sync.Once

// DirectoryContents is the result of listing one directory
type DirectoryContents struct {
	Directories []string `json:"directories"`
	Images      []string `json:"images"`
}

// Scanner finds image files in a directory
type Scanner struct {
	minSize int64
	matcher glob.Glob
}

// ScannerOption configures a Scanner
type ScannerOption func(*scannerOptions)

type scannerOptions struct {
	minSizeKB  int64
	extensions []string
}

// WithMinSizeKB sets the minimum file size in KB
func WithMinSizeKB(kb int64) ScannerOption {
	return func(o *scannerOptions) { o.minSizeKB = kb }
}

// WithExtensions replaces the list of image extensions
func WithExtensions(exts []string) ScannerOption {
	return func(o *scannerOptions) {
		if len(exts) > 0 {
			o.extensions = exts
		}
	}
}

// NewScanner creates a scanner
func NewScanner(opts ...ScannerOption) (*Scanner, error) {
	o := scannerOptions{minSizeKB: DefaultMinSizeKB, extensions: DefaultExtensions}
	for _, opt := range opts {
		opt(&o)
	}

	exts := make([]string, 0, len(o.extensions))
	for _, e := range o.extensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	pattern := "*.{" + strings.Join(exts, ",") + "}"
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid image extension list", "scan.extensions", errors.InvalidConfig, err)
	}

	registerExif.Do(func() { exif.RegisterParsers(mknote.All...) })
	return &Scanner{minSize: o.minSizeKB * 1024, matcher: matcher}, nil
}

// IsImage reports whether name has one of the scanner's extensions
func (s *Scanner) IsImage(name string) bool {
	return s.matcher.Match(strings.ToLower(filepath.Base(name)))
}

// Admits reports whether img would be listed by a scan: an image
// extension and at least the minimum size
func (s *Scanner) Admits(img types.Image) bool {
	return s.IsImage(img.Path) && img.Size >= s.minSize
}

// List returns the subdirectories and image files of dir, each sorted by
// path. Images below the minimum size are skipped.
func (s *Scanner) List(dir string) (*DirectoryContents, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("path does not exist", dir, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("failed to stat directory", dir, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("path is not a directory", dir, errors.InvalidPath, nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("failed to read directory", dir, errors.FileAccessDenied, err)
	}

	contents := &DirectoryContents{Directories: []string{}, Images: []string{}}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			contents.Directories = append(contents.Directories, path)
			continue
		}
		if !entry.Type().IsRegular() || !s.IsImage(entry.Name()) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			log.LogWithFields(log.F("path", path)).Debugf("Skipping unreadable entry: %v", err)
			continue
		}
		if s.Admits(types.Image{Path: path, Size: fi.Size()}) {
			contents.Images = append(contents.Images, path)
		}
	}
	sort.Strings(contents.Directories)
	sort.Strings(contents.Images)
	return contents, nil
}

// Scan lists dir and stats every image found. Images that cannot be
// read are skipped with a warning.
func (s *Scanner) Scan(dir string) ([]types.Image, error) {
	contents, err := s.List(dir)
	if err != nil {
		return nil, err
	}
	images := make([]types.Image, 0, len(contents.Images))
	for _, path := range contents.Images {
		img, err := s.Stat(path)
		if err != nil {
			log.LogWithError(err).Warn("Skipping image")
			continue
		}
		images = append(images, img)
	}
	log.LogWithFields(log.F("dir", dir), log.F("images", len(images))).Debug("Scan complete")
	return images, nil
}

// Stat builds the Image record for one file. CreatedAt comes from EXIF
// DateTimeOriginal when present, the modification time otherwise.
// Dimensions are filled in when the format can be decoded.
func (s *Scanner) Stat(path string) (types.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Image{}, errors.NewFileError("image does not exist", path, errors.FileNotFound, err)
		}
		return types.Image{}, errors.NewFileError("failed to stat image", path, errors.FileAccessDenied, err)
	}
	if !fi.Mode().IsRegular() {
		return types.Image{}, errors.NewFileError("path is not a file", path, errors.InvalidPath, nil)
	}

	img := types.Image{Path: path, Size: fi.Size(), CreatedAt: fi.ModTime()}

	f, err := os.Open(path)
	if err != nil {
		return types.Image{}, errors.NewFileError("failed to open image", path, errors.FileAccessDenied, err)
	}
	defer f.Close()

	logger := log.LogWithFields(log.F("path", path))
	if x, err := exif.Decode(f); err == nil {
		if taken, err := x.DateTime(); err == nil && !taken.IsZero() {
			img.CreatedAt = taken
		}
	} else {
		logger.Debugf("No EXIF data: %v", err)
	}

	if _, err := f.Seek(0, 0); err == nil {
		if cfg, _, err := image.DecodeConfig(f); err == nil {
			img.Width, img.Height = cfg.Width, cfg.Height
		}
	}
	return img, nil
}

// ParentDirectory returns the directory containing path
func ParentDirectory(path string) (string, error) {
	parent, err := types.ParentDirectory(path)
	if err != nil {
		return "", errors.NewFileError(err.Error(), path, errors.InvalidPath, nil)
	}
	return parent, nil
}
