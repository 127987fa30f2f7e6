package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Driver names accepted by OpenDriver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// migration is one incremental schema change, recorded in schema_migrations.
type migration struct {
	version    int
	statements []string
	backfill   func(tx *sql.Tx, d keyset.Dialect) error
}

// Schema version tracking:
// 1 - keyset indexes for every listing sort field
// 2 - title_folded for case-insensitive title search
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_recipes_collection_title ON recipes(collection_id, title, id)`,
			`CREATE INDEX IF NOT EXISTS idx_recipes_collection_updated ON recipes(collection_id, updated_at, id)`,
			`CREATE INDEX IF NOT EXISTS idx_recipes_collection_created ON recipes(collection_id, created_at, id)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`ALTER TABLE recipes ADD COLUMN title_folded TEXT NOT NULL DEFAULT ''`,
		},
		backfill: backfillTitleFolded,
	},
}

// backfillTitleFolded computes title_folded for rows written before the
// column existed. Folding is Unicode-aware, so it runs here rather than in
// SQL.
func backfillTitleFolded(tx *sql.Tx, d keyset.Dialect) error {
	rows, err := tx.Query("SELECT id, title FROM recipes ORDER BY id")
	if err != nil {
		return err
	}
	type row struct{ id, folded string }
	var pending []row
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, row{id: id, folded: model.FoldText(title)})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	update := d.Rebind("UPDATE recipes SET title_folded = ? WHERE id = ?")
	for _, r := range pending {
		if _, err := tx.Exec(update, r.folded, r.id); err != nil {
			return err
		}
	}
	return nil
}

// Store provides transactional access to recipe data.
type Store struct {
	db       *sql.DB
	dialect  keyset.Dialect
	compiler *keyset.Compiler
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	return OpenDriver(DriverSQLite, path)
}

// OpenDriver opens a database through the named database/sql driver
// ("sqlite3" or "pgx") and brings its schema up to date.
func OpenDriver(driver, dsn string) (*Store, error) {
	dialect, err := keyset.DialectFor(driver)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == keyset.SQLite {
		// SQLite only supports one writer at a time, and an in-memory
		// database lives exactly as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dialect, compiler: keyset.NewCompiler(dialect)}
	if err := s.applySchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect returns the SQL dialect of the underlying database.
func (s *Store) Dialect() keyset.Dialect {
	return s.dialect
}

// WithTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapStorageError("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, dialect: s.dialect, compiler: s.compiler}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return model.WrapStorageError("commit transaction", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func (s *Store) applySchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies every migration newer than the recorded version.
func (s *Store) runMigrations() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.migrate(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return int(version.Int64), nil
}

func (s *Store) migrate(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v%d: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	if m.backfill != nil {
		if err := m.backfill(tx, s.dialect); err != nil {
			return fmt.Errorf("backfill v%d: %w", m.version, err)
		}
	}

	_, err = tx.Exec(s.dialect.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
		m.version, time.Now().UTC().UnixMicro())
	if err != nil {
		return fmt.Errorf("record migration v%d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v%d: %w", m.version, err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
