package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// CreateTestImage writes a width x height image to dir/name, encoded by the
// name's extension (jpeg for .jpg/.jpeg, png otherwise), and pads the file
// with trailing zero bytes up to sizeKB. Decoders reading only the header
// are unaffected by the padding.
func CreateTestImage(t *testing.T, dir, name string, width, height int, sizeKB int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	default:
		require.NoError(t, png.Encode(&buf, img))
	}
	if pad := sizeKB*1024 - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// CreateImageDirectory fills dir with a small gallery: three images large
// enough to be listed, one thumbnail below the size floor, a text file and
// a subdirectory
func CreateImageDirectory(t *testing.T, dir string) []string {
	t.Helper()
	paths := []string{
		CreateTestImage(t, dir, "beach.jpg", 32, 24, 20),
		CreateTestImage(t, dir, "Forest.PNG", 16, 16, 30),
		CreateTestImage(t, dir, "city.png", 8, 8, 16),
	}
	CreateTestImage(t, dir, "thumb.png", 4, 4, 1)
	CreateTestFilesWithContent(t, dir, map[string]string{
		"notes.txt":        strings.Repeat("x", 20*1024),
		"nested/inner.jpg": "not scanned",
	})
	return paths
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
