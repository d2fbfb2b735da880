package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the badger database handle. It is opened once per process
// and handed to the repositories that need it.
type Store struct {
	db       *badger.DB
	dbPath   string
	inMemory bool
}

// OpenStore opens the badger database at path. An empty path or inMemory
// opens a throwaway in-memory database.
func OpenStore(path string, inMemory bool) (*Store, error) {
	var opts badger.Options
	if inMemory || path == "" {
		inMemory = true
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db, dbPath: path, inMemory: inMemory}, nil
}

// DB returns the underlying badger handle.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path returns the on-disk location, empty for in-memory stores.
func (s *Store) Path() string {
	if s.inMemory {
		return ""
	}
	return s.dbPath
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Clear drops every key in the database.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Backup writes a full backup stream to w and returns the version it was taken at.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to backup database: %w", err)
	}
	return version, nil
}

// Restore loads a stream produced by Backup into the database.
func (s *Store) Restore(r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := s.db.Load(r, 16); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}
