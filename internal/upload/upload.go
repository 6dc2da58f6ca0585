// Package upload stores article images on local disk and serves them back.
package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/uploads"

var ErrInvalidURL = errors.New("not an upload url")

// File is a stored upload.
type File struct {
	Name    string
	ModTime time.Time
}

// Storage writes uploads into a single flat directory.
type Storage struct {
	dir string
}

// NewStorage creates dir if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// Save copies r into a new file named after a fresh UUID, keeping the
// extension of the client-supplied name, and returns its public URL.
// The file appears under its final name only once fully written.
func (s *Storage) Save(clientName string, r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("write upload: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + extension(clientName)
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", 0, fmt.Errorf("store upload: %w", err)
	}
	return URLPrefix + "/" + name, n, nil
}

func extension(clientName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(clientName)))
	for _, r := range ext[min(1, len(ext)):] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

// nameFromURL maps a public URL back to a file name inside the directory.
func nameFromURL(url string) (string, error) {
	name, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return name, nil
}

// Path returns the on-disk path of the file behind url.
func (s *Storage) Path(url string) (string, error) {
	name, err := nameFromURL(url)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes the file behind url. A missing file is not an error.
func (s *Storage) Remove(url string) error {
	p, err := s.Path(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Files lists stored uploads, skipping in-progress temp files.
func (s *Storage) Files() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// URL returns the public URL for a stored file name.
func URL(name string) string {
	return URLPrefix + "/" + name
}

// Handler serves stored files read-only under URLPrefix. Directory
// listings and dot files are not served.
func (s *Storage) Handler() http.Handler {
	files := http.StripPrefix(URLPrefix+"/", http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := nameFromURL(r.URL.Path); err != nil {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
