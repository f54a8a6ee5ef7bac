package images

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsafeName is returned when a stored name would resolve outside the
// uploads directory.
var ErrUnsafeName = errors.New("unsafe upload name")

// DiskStore keeps uploaded files flat under one directory, each named
// "<unix millis>-<original base name>".
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

// SaveAll writes every file and returns the stored names in order. If any
// write fails the files already written for this call are removed.
func (s *DiskStore) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := s.save(fh)
		if err != nil {
			for _, n := range names {
				_ = s.Remove(n)
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *DiskStore) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	stamp := s.now().UnixMilli()
	base := sanitizeFilename(fh.Filename)
	name := fmt.Sprintf("%d-%s", stamp, base)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	for i := 1; errors.Is(err, fs.ErrExist) && i < 100; i++ {
		name = fmt.Sprintf("%d-%d-%s", stamp, i, base)
		dst, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes a stored file. A file that is already gone is not an error;
// absolute URLs are not ours and are ignored.
func (s *DiskStore) Remove(raw string) error {
	if IsAbsoluteURL(raw) {
		return nil
	}
	name := StoredName(raw)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrUnsafeName, raw)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func sanitizeFilename(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "upload"
	}
	return base
}
