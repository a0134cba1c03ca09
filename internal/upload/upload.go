package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/uploads"

var ErrUnsupportedType = errors.New("unsupported file type")

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
	"image/svg+xml":   true,
	"image/webp":      true,
}

var whitespace = regexp.MustCompile(`\s+`)

// Allowed reports whether files of the given MIME type are accepted.
func Allowed(contentType string) bool {
	mt := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return allowedTypes[strings.ToLower(mt)]
}

// Store writes uploaded files below a root directory.
type Store struct {
	root string
	now  func() time.Time
}

func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

func (s *Store) Root() string {
	return s.root
}

// Save stores fh under subdir and returns its public URL path.
func (s *Store) Save(fh *multipart.FileHeader, subdir ...string) (string, error) {
	if !Allowed(fh.Header.Get("Content-Type")) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, fh.Header.Get("Content-Type"))
	}

	rel := filepath.Join(subdir...)
	dir := filepath.Join(s.root, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := s.fileName(fh.Filename)
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path.Join(URLPrefix, filepath.ToSlash(rel), name), nil
}

// SaveAll stores every accepted file and silently drops the rest.
func (s *Store) SaveAll(files []*multipart.FileHeader, subdir ...string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := s.Save(fh, subdir...)
		if errors.Is(err, ErrUnsupportedType) {
			continue
		}
		if err != nil {
			return urls, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// RemoveDir deletes a subdirectory and everything below it.
func (s *Store) RemoveDir(subdir ...string) error {
	rel := filepath.Join(subdir...)
	if rel == "" || rel == "." {
		return errors.New("refusing to remove upload root")
	}
	return os.RemoveAll(filepath.Join(s.root, rel))
}

func (s *Store) fileName(original string) string {
	base := whitespace.ReplaceAllString(filepath.Base(original), "-")
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + base
}

// Absolute resolves a stored /uploads path against baseURL. Absolute URLs
// and other relative paths are returned unchanged.
func Absolute(u, baseURL string) string {
	if u == "" || baseURL == "" {
		return u
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	if strings.HasPrefix(u, URLPrefix+"/") {
		return strings.TrimRight(baseURL, "/") + u
	}
	return u
}
