// Package cache stores compiled programs in SQLite, keyed by the content
// hash of their source and the optimization passes that produced them.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/tapeworm/compiler"
	"github.com/chazu/tapeworm/ir"
	"github.com/chazu/tapeworm/optimizer"
	"github.com/chazu/tapeworm/vm"
)

var log = commonlog.GetLogger("tapeworm.cache")

// ErrNotFound indicates the requested key is not cached.
var ErrNotFound = errors.New("program not cached")

// Entry is a cached compilation.
type Entry struct {
	Key      string
	Passes   string
	TreeHash [32]byte
	Nodes    int
	Program  *vm.Program
	Created  time.Time
}

// Store is a SQLite-backed program cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Key returns the cache key for src compiled with the named passes.
func Key(src, passes string) string {
	h := sha256.New()
	h.Write([]byte(passes))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		key        TEXT PRIMARY KEY,
		passes     TEXT NOT NULL,
		tree_hash  BLOB NOT NULL,
		nodes      INTEGER NOT NULL,
		image      BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a compiled program under key, replacing any previous entry.
func (s *Store) Put(key, passes string, tree []ir.Node, p *vm.Program) error {
	image, err := vm.EncodeImage(p)
	if err != nil {
		return err
	}
	hash := ir.Hash(tree)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (key, passes, tree_hash, nodes, image, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		key, passes, hash[:], ir.Count(tree), image, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

// Get returns the entry for key, or ErrNotFound.
func (s *Store) Get(key string) (*Entry, error) {
	var (
		e       = Entry{Key: key}
		hash    []byte
		image   []byte
		created int64
	)
	err := s.db.QueryRow(
		"SELECT passes, tree_hash, nodes, image, created_at FROM programs WHERE key = ?", key,
	).Scan(&e.Passes, &hash, &e.Nodes, &image, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}

	p, err := vm.DecodeImage(image)
	if err != nil {
		return nil, fmt.Errorf("cached program %s: %w", key, err)
	}
	e.Program = p
	copy(e.TreeHash[:], hash)
	e.Created = time.Unix(created, 0)
	return &e, nil
}

// Len returns the number of cached programs.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM programs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting programs: %w", err)
	}
	return n, nil
}

// Purge removes every cached program.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM programs"); err != nil {
		return fmt.Errorf("purging cache: %w", err)
	}
	return nil
}

// Program returns the lowered program for src, compiling it with pipeline
// on a cache miss. A nil Store compiles every time. Entries that fail to
// decode are recompiled and overwritten.
func (s *Store) Program(src string, pipeline *optimizer.Pipeline) (*vm.Program, error) {
	key := Key(src, pipeline.Names())
	if s != nil {
		e, err := s.Get(key)
		switch {
		case err == nil:
			log.Debugf("cache hit %s", key[:12])
			return e.Program, nil
		case errors.Is(err, ErrNotFound):
			log.Debugf("cache miss %s", key[:12])
		default:
			log.Warningf("cache lookup %s: %s", key[:12], err)
		}
	}

	tree, err := compiler.Compile(src, compiler.WithPipeline(pipeline))
	if err != nil {
		return nil, err
	}
	p := vm.Lower(tree)

	if s != nil {
		if err := s.Put(key, pipeline.Names(), tree, p); err != nil {
			log.Warningf("cache store %s: %s", key[:12], err)
		}
	}
	return p, nil
}
