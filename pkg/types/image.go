package types

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Image is one image file in the collection. Identity is the Path,
// compared as a case-sensitive string.
type Image struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size,omitempty" yaml:"size,omitempty"`             // Size in bytes, 0 when unknown
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"` // Zero when unknown
	Width     int       `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int       `json:"height,omitempty" yaml:"height,omitempty"`
}

// Name returns the final path segment, treating both separators alike
func (i Image) Name() string {
	return BaseName(i.Path)
}

// String returns a human-readable representation
func (i Image) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Image: %s\n", i.Path))
	sb.WriteString(fmt.Sprintf("Size: %d bytes\n", i.Size))
	if !i.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created: %s\n", i.CreatedAt.Format(time.RFC3339)))
	}
	if i.Width > 0 && i.Height > 0 {
		sb.WriteString(fmt.Sprintf("Dimensions: %dx%d\n", i.Width, i.Height))
	}
	return sb.String()
}

// BaseName returns the segment after the last '/' once '\' has been
// normalized to '/'
func BaseName(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		return normalized[idx+1:]
	}
	return normalized
}

// ParentDirectory returns the directory containing path
func ParentDirectory(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file has no parent directory")
	}
	parent := filepath.Dir(filepath.Clean(path))
	if parent == "." && !strings.ContainsAny(path, `/\`) {
		return "", fmt.Errorf("file has no parent directory")
	}
	return parent, nil
}

// ParseTimestamp accepts RFC 3339 strings or Unix milliseconds and returns
// the zero time for anything else
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}

// UnixMilliOrZero maps the zero time to epoch 0
func UnixMilliOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
