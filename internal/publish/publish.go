package publish

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores a rendered artifact under name.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Location is implemented by sinks that can say where an artifact ended up.
type Location interface {
	Location(name string) string
}

// DirSink writes artifacts into a local directory.
type DirSink struct {
	Dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

// Put writes data atomically to Dir/name.
func (s *DirSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	return SafeWriteFile(filepath.Join(s.Dir, name), data)
}

// Location returns the path name is written to.
func (s *DirSink) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// MultiSink fans an artifact out to every sink. All sinks are attempted; the
// errors are joined.
type MultiSink []Sink

// Put writes to every sink in order.
func (m MultiSink) Put(ctx context.Context, name string, data []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Put(ctx, name, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Locations lists where name was published, one entry per sink that knows.
func (m MultiSink) Locations(name string) []string {
	var out []string
	for _, s := range m {
		if l, ok := s.(Location); ok {
			out = append(out, l.Location(name))
		}
	}
	return out
}

// ContentType guesses a MIME type from the artifact name.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".geojson":
		return "application/geo+json"
	case ".csv":
		return "text/csv; charset=utf-8"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func checkName(name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}
