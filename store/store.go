// Package store reads and writes movie records kept as one JSON file per movie.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultIndexFile is the reserved file excluded from listings.
	DefaultIndexFile = "index.json"

	recordExt = ".json"
)

// Store is a directory of movie records.
type Store struct {
	dir       string
	indexFile string
	logger    zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIndexFile overrides the reserved index file name.
func WithIndexFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.indexFile = name
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens the record directory at dir.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	s := &Store{
		dir:       dir,
		indexFile: DefaultIndexFile,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path backing slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+recordExt)
}

// List returns the slugs of all records, ordered by file name.
func (s *Store) List() ([]string, error) {
	// ReadDir returns entries sorted by file name.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, recordExt) || name == s.indexFile {
			continue
		}
		if !s.isRecordFile(entry) {
			s.logger.Debug().Str("name", name).Msg("Skipping non-regular record entry")
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, recordExt))
	}

	s.logger.Debug().
		Str("dir", s.dir).
		Int("count", len(slugs)).
		Msg("Listed movie records")

	return slugs, nil
}

// isRecordFile reports whether entry is a regular file, following symlinks.
func (s *Store) isRecordFile(entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Load reads and parses the record stored under slug.
func (s *Store) Load(slug string) (*Record, error) {
	path := s.Path(slug)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	rec, err := ParseRecord(slug, data)
	if err != nil {
		return nil, &MalformedRecordError{Path: path, Err: err}
	}
	return rec, nil
}

// Save overwrites the record file with rec. The write goes through a temporary
// file next to the target so a crash never leaves a truncated record behind.
// A symlinked record is written through the link and the existing file mode is kept.
func (s *Store) Save(rec *Record) error {
	if rec == nil || rec.Slug == "" {
		return fmt.Errorf("save record: missing slug")
	}

	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Slug, err)
	}

	path := s.Path(rec.Slug)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+rec.Slug+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write record %s: %w", rec.Slug, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync record %s: %w", rec.Slug, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close record %s: %w", rec.Slug, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod record %s: %w", rec.Slug, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace record %s: %w", rec.Slug, err)
	}

	s.logger.Debug().Str("path", path).Msg("Saved movie record")
	return nil
}
