package geoid

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	// SourceFile is the name of the supported GSI geoid release.
	SourceFile = "gsigeo2011_ver2_1.asc"
	// CacheFile is the name of the binary cache built from SourceFile.
	CacheFile = "gsigeo2011_ver2_1.gcache"
)

var (
	// ErrMissingSourceFile is returned when neither a cache nor the source
	// grid can be found.
	ErrMissingSourceFile = errors.New("geoid grid file not found")
)

// Store locates a geoid grid on disk. The first Load parses the (large)
// source file and memoizes it as a binary cache next to it; later loads read
// the cache directly.
type Store struct {
	// Dir is the directory holding the grid files. Defaults to the working
	// directory.
	Dir string
	// SourceFile and CacheFile default to the package constants of the same
	// name. Relative names are resolved against Dir.
	SourceFile, CacheFile string
	// Logger receives progress messages. Defaults to the standard logger.
	Logger *log.Logger

	// CacheWriteErr is set by Load if a freshly built cache could not be
	// written. Load still succeeds in that case.
	CacheWriteErr error
	// Built is set by Load if the grid was parsed from the source file.
	Built bool
}

// Load reads the geoid grid in dir using the default file names.
func Load(dir string) (*Model, error) {
	s := &Store{Dir: dir}
	return s.Load()
}

// SourcePath returns the location of the source grid.
func (s *Store) SourcePath() string { return s.path(s.SourceFile, SourceFile) }

// CachePath returns the location of the grid cache.
func (s *Store) CachePath() string { return s.path(s.CacheFile, CacheFile) }

func (s *Store) path(name, def string) string {
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

// Load returns the grid, reading the cache if there is one and building it
// from the source file otherwise. The returned Model has its spacing
// normalized (see geom.Grid.Normalize).
func (s *Store) Load() (*Model, error) {
	s.CacheWriteErr, s.Built = nil, false

	cache := s.CachePath()
	if pathExists(cache) {
		s.logf("Reading geoid cache %s", cache)
		m, err := ReadCache(cache)
		if err != nil {
			return nil, err
		}
		m.Normalize()
		return m, nil
	}

	src := s.SourcePath()
	if !pathExists(src) {
		return nil, fmt.Errorf(
			"%w: place the GSI geoid file %s in %s",
			ErrMissingSourceFile, filepath.Base(src), filepath.Dir(src),
		)
	}

	s.logf("Building geoid cache from %s (first run only)", src)
	t0 := time.Now()
	m, err := ReadASCIIFile(src)
	if err != nil {
		return nil, err
	}
	s.Built = true
	s.logf("Read %d of %d grid nodes in %v", m.Count(), m.Len(),
		time.Since(t0))

	if err := WriteCache(cache, m); err != nil {
		s.CacheWriteErr = err
		s.logf("Warning: could not write geoid cache %s: %s. The grid "+
			"will be parsed again next time.", cache, err)
	}

	m.Normalize()
	return m, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
