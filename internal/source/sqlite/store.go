// Package sqlite provides a SQLite-backed source store. Each symbol is kept as
// one JSON document, so a library is a namespace of documents much like a
// collection in a document database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"symexport/internal/source"
	"symexport/internal/source/sqlite/migrations"
	"symexport/pkg/contracts/domain"
)

// Store reads and writes datasets in a SQLite file
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store and applies the embedded migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", source.ErrConnectivity, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %v", source.ErrConnectivity, err)
	}
	if err := applyMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Opener returns a source.Opener that opens path for every session
func Opener(path string) source.Opener {
	return source.OpenerFunc(func(ctx context.Context) (source.Session, error) {
		store, err := Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}

func applyMigrations(ctx context.Context, sqlDB *sql.DB) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := sqlDB.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateLibrary registers a library; an existing library is left untouched
func (s *Store) CreateLibrary(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("library name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO libraries (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("create library %s: %w", name, err)
	}
	return nil
}

// WriteSymbol stores ds under symbol, replacing any previous document. The
// library is created when missing.
func (s *Store) WriteSymbol(ctx context.Context, library, symbol string, ds *domain.Dataset) error {
	payload, err := encodeDataset(ds)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", library, symbol, err)
	}
	if err := s.CreateLibrary(ctx, library); err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO symbols (library, symbol, document, row_count, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(library, symbol) DO UPDATE SET
		   document = excluded.document,
		   row_count = excluded.row_count,
		   updated_at = excluded.updated_at`,
		library, symbol, payload, ds.Len(), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", library, symbol, err)
	}
	return nil
}

// ListLibraries returns library names in alphabetical order
func (s *Store) ListLibraries(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT name FROM libraries ORDER BY name`)
}

// ListSymbols returns the symbols of library in insertion order
func (s *Store) ListSymbols(ctx context.Context, library string) ([]string, error) {
	if err := s.requireLibrary(ctx, library); err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, `SELECT symbol FROM symbols WHERE library = ? ORDER BY rowid`, library)
}

// ReadSymbol loads and decodes one symbol document
func (s *Store) ReadSymbol(ctx context.Context, library, symbol string) (*domain.Dataset, error) {
	if err := s.requireLibrary(ctx, library); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT document FROM symbols WHERE library = ? AND symbol = ?`, library, symbol).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", source.ErrSymbolNotFound, library, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}
	ds, err := decodeDataset(payload)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}
	return ds, nil
}

func (s *Store) requireLibrary(ctx context.Context, library string) error {
	var one int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM libraries WHERE name = ?`, library).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", source.ErrLibraryNotFound, library)
	}
	if err != nil {
		return fmt.Errorf("lookup library %s: %w", library, err)
	}
	return nil
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
