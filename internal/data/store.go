package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"garage-site/internal/errs"
	"garage-site/internal/logger"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists collections as JSON files, one file per collection.
// Every write rewrites the whole file.
type Store struct {
	dir string
	log logger.Logger

	mu    sync.Mutex
	locks map[Collection]*sync.Mutex
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		dir:   dir,
		log:   log,
		locks: make(map[Collection]*sync.Mutex),
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a collection.
func (s *Store) Path(c Collection) string {
	return filepath.Join(s.dir, c.File())
}

func (s *Store) lock(c Collection) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[c]
	if !ok {
		l = &sync.Mutex{}
		s.locks[c] = l
	}
	return l
}

// Read returns every document of a collection. A missing file is created from
// the collection's seed payload.
func Read[T any](s *Store, c Collection) ([]T, error) {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()
	return readList[T](s, c)
}

// Write replaces the whole collection. Concurrent Write calls on the same
// collection are last-write-wins; use Update for read-modify-write.
func Write[T any](s *Store, c Collection, items []T) error {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()
	return writeList(s, c, items)
}

// Update runs fn on the current collection and persists its result while
// holding the collection lock, so in-process writers cannot lose each
// other's changes.
func Update[T any](s *Store, c Collection, fn func([]T) ([]T, error)) ([]T, error) {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()

	items, err := readList[T](s, c)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := writeList(s, c, next); err != nil {
		return nil, err
	}
	return next, nil
}

// ReadObject returns a single-object document such as a settings file.
func ReadObject[T any](s *Store, c Collection) (T, error) {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()

	var v T
	raw, err := s.load(c)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(err, "Corrupt settings file")
		return v, errs.Storage("decode", string(c), err)
	}
	return v, nil
}

// WriteObject replaces a single-object document.
func WriteObject[T any](s *Store, c Collection, v T) error {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()
	return s.save(c, v)
}

func readList[T any](s *Store, c Collection) ([]T, error) {
	raw, err := s.load(c)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(err, "Corrupt collection file")
		return nil, errs.Storage("decode", string(c), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeList[T any](s *Store, c Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	return s.save(c, items)
}

// load returns the raw file contents, seeding the file when it is absent.
func (s *Store) load(c Collection) ([]byte, error) {
	raw, err := os.ReadFile(s.Path(c))
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(err, "Failed to read collection")
		return nil, errs.Storage("read", string(c), err)
	}

	seed := seedFor(c)
	if err := s.writeFile(c, seed); err != nil {
		return nil, err
	}
	s.log.With(map[string]interface{}{"collection": string(c)}).Info("Initialized collection from seed data")
	return seed, nil
}

func (s *Store) save(c Collection, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(err, "Failed to encode collection")
		return errs.Storage("encode", string(c), err)
	}
	return s.writeFile(c, append(raw, '\n'))
}

// writeFile writes through a temporary file and a rename so readers never
// observe a partially written collection.
func (s *Store) writeFile(c Collection, raw []byte) error {
	tmp, err := os.CreateTemp(s.dir, c.File()+".*.tmp")
	if err != nil {
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(err, "Failed to create temp file")
		return errs.Storage("write", string(c), err)
	}
	tmpName := tmp.Name()
	_ = tmp.Chmod(0o644)

	_, werr := bytes.NewReader(raw).WriteTo(tmp)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, s.Path(c))
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		s.log.With(map[string]interface{}{"collection": string(c)}).Error(werr, "Failed to write collection")
		return errs.Storage("write", string(c), werr)
	}
	return nil
}
