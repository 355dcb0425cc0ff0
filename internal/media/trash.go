package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pictag/internal/errors"
	"pictag/internal/log"
)

// FallbackTrashDir is created beside an image when the system trash is on
// another device
const FallbackTrashDir = ".pictag-trash"

// Trash moves files into a freedesktop.org trash directory
type Trash struct {
	dir string
	now func() time.Time
}

// NewTrash uses $XDG_DATA_HOME/Trash, or ~/.local/share/Trash
func NewTrash() *Trash {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "share")
		}
	}
	return NewTrashAt(filepath.Join(base, "Trash"))
}

// NewTrashAt uses dir as the trash root
func NewTrashAt(dir string) *Trash {
	return &Trash{dir: dir, now: time.Now}
}

// Dir returns the trash root
func (t *Trash) Dir() string {
	return t.dir
}

// DeleteImageFile moves path to the trash
func (t *Trash) DeleteImageFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("image does not exist", path, errors.FileNotFound, err)
		}
		return errors.NewFileError("failed to stat image", path, errors.FileAccessDenied, err)
	}
	if !fi.Mode().IsRegular() {
		return errors.NewFileError("path is not a file", path, errors.InvalidPath, nil)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewFileError("failed to resolve path", path, errors.InvalidPath, err)
	}

	logger := log.LogWithFields(log.F("path", abs))
	dest, err := t.moveInto(t.dir, abs, true)
	if err != nil {
		logger.Debugf("System trash unavailable, using %s: %v", FallbackTrashDir, err)
		dest, err = t.moveInto(filepath.Join(filepath.Dir(abs), FallbackTrashDir), abs, false)
		if err != nil {
			return errors.NewFileError("failed to delete image", path, errors.FileOperationFailed, err)
		}
	}
	logger.With(log.F("trash", dest)).Info("Moved image to trash")
	return nil
}

// moveInto renames src into root/files, writing the .trashinfo record
// under root/info when withInfo is set
func (t *Trash) moveInto(root, src string, withInfo bool) (string, error) {
	filesDir := filepath.Join(root, "files")
	infoDir := filepath.Join(root, "info")
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return "", err
	}
	if withInfo {
		if err := os.MkdirAll(infoDir, 0o700); err != nil {
			return "", err
		}
	}

	name := filepath.Base(src)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s.%d%s", stem, i, ext)
		}
		dest := filepath.Join(filesDir, candidate)
		if _, err := os.Lstat(dest); err == nil {
			continue
		}

		var infoPath string
		if withInfo {
			infoPath = filepath.Join(infoDir, candidate+".trashinfo")
			f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if os.IsExist(err) {
				continue
			}
			if err != nil {
				return "", err
			}
			_, werr := fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
				(&url.URL{Path: src}).EscapedPath(), t.now().Format("2006-01-02T15:04:05"))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(infoPath)
				return "", fmt.Errorf("write trash info: %v %v", werr, cerr)
			}
		}

		if err := os.Rename(src, dest); err != nil {
			if infoPath != "" {
				os.Remove(infoPath)
			}
			return "", err
		}
		return dest, nil
	}
}
