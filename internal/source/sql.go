package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

const (
	defaultSQLitePath = "afriqar.db"
	defaultDSN        = "postgres://localhost/afriqar?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the sql.Open function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}

type dialect struct {
	name    string
	ddl     string
	fetch   string
	upsert  string
	listing string
}

var (
	sqliteDialect = dialect{
		name: DriverSQLite,
		ddl: `CREATE TABLE IF NOT EXISTS catalog_documents (
		document TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
		fetch:   `SELECT payload FROM catalog_documents WHERE document = ?`,
		upsert:  `INSERT INTO catalog_documents(document,payload) VALUES(?,?) ON CONFLICT(document) DO UPDATE SET payload=excluded.payload`,
		listing: `SELECT document FROM catalog_documents`,
	}
	postgresDialect = dialect{
		name: DriverPostgres,
		ddl: `CREATE TABLE IF NOT EXISTS catalog_documents (
		document TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`,
		fetch:   `SELECT payload FROM catalog_documents WHERE document = $1`,
		upsert:  `INSERT INTO catalog_documents(document,payload) VALUES($1,$2) ON CONFLICT(document) DO UPDATE SET payload=EXCLUDED.payload`,
		listing: `SELECT document FROM catalog_documents`,
	}
)

// SQL reads documents from the catalog_documents table.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) a SQLite documents database.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	openMu.Lock()
	db, err := sqlOpen("sqlite", path)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newSQL(ctx, db, sqliteDialect)
}

// OpenPostgres opens a Postgres documents database through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen("pgx", dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQL(ctx, db, postgresDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &SQL{db: db, dialect: d}, nil
}

func (s *SQL) Driver() string { return s.dialect.name }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQL) DB() *sql.DB { return s.db }

func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) Fetch(ctx context.Context, document string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.fetch, document).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", document, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", document, err)
	}
	return payload, nil
}

// Documents lists stored document names in order.
func (s *SQL) Documents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listing)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Seed upserts docs in a single transaction.
func (s *SQL) Seed(ctx context.Context, docs map[string][]byte) error {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, s.dialect.upsert, name, docs[name]); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
