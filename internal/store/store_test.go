package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Dialect() != keyset.SQLite {
		t.Errorf("Dialect() = %v, want sqlite", s.Dialect())
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM recipes").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"collections", "recipes", "instructions", "ingredients", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}

	var applied int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("schema_migrations has %d rows after repeated opens, want %d", applied, len(migrations))
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpenDriver_UnknownDriver(t *testing.T) {
	_, err := OpenDriver("oracle", "whatever")
	if !model.IsValidation(err) {
		t.Errorf("OpenDriver(oracle) error = %v, want VALIDATION", err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic (though may error)
	_ = s.Close()
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createFileStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createFileStore(t)

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createFileStore(t)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createFileStore(t)

	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema table tests

func TestSchema_RecipesTable(t *testing.T) {
	s := createFileStore(t)

	columns := getTableColumns(t, s.db, "recipes")

	expected := []string{
		"id", "collection_id", "created_by", "title", "title_folded", "note", "cook_time",
		"prep_time", "total_time", "yield", "liked", "original_url",
		"last_made", "cover_image", "cover_thumbnail", "created_at", "updated_at",
	}

	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("recipes table missing column %q", col)
		}
	}
}

func TestMigration_BackfillsTitleFolded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	seedRecipe(t, s)

	// Roll the database back to its v1 shape.
	for _, stmt := range []string{
		"ALTER TABLE recipes DROP COLUMN title_folded",
		"DELETE FROM schema_migrations WHERE version = 2",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	var folded string
	if err := s.db.QueryRowContext(ctx, "SELECT title_folded FROM recipes WHERE id = ?", testRecipeID).Scan(&folded); err != nil {
		t.Fatalf("read title_folded: %v", err)
	}
	if folded != "hot chocolate" {
		t.Errorf("title_folded = %q, want %q", folded, "hot chocolate")
	}
}

func TestSchema_ItemTables(t *testing.T) {
	s := createFileStore(t)

	for _, table := range []string{"instructions", "ingredients"} {
		columns := getTableColumns(t, s.db, table)
		for _, col := range []string{"id", "recipe_id", "text", "position"} {
			if !contains(columns, col) {
				t.Errorf("%s table missing column %q", table, col)
			}
		}
	}
}

func TestSchema_RecipeIndexes(t *testing.T) {
	s := createFileStore(t)

	indexes := getTableIndexes(t, s.db, "recipes")

	expected := []string{
		"idx_recipes_collection_title",
		"idx_recipes_collection_updated",
		"idx_recipes_collection_created",
	}

	for _, idx := range expected {
		if !contains(indexes, idx) {
			t.Errorf("recipes table missing index %q", idx)
		}
	}
}

// Constraint tests

func TestConstraint_ItemPositionUnique(t *testing.T) {
	s := createFileStore(t)
	seedRecipe(t, s)

	_, err := s.db.Exec(`INSERT INTO ingredients (id, recipe_id, text, position) VALUES ('i1', ?, 'Milk', 0)`, testRecipeID)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err = s.db.Exec(`INSERT INTO ingredients (id, recipe_id, text, position) VALUES ('i2', ?, 'Eggs', 0)`, testRecipeID)
	if err == nil {
		t.Error("expected UNIQUE(recipe_id, position) violation, got nil")
	}
}

func TestConstraint_ItemsCascade(t *testing.T) {
	s := createFileStore(t)
	seedRecipe(t, s)

	_, err := s.db.Exec(`INSERT INTO instructions (id, recipe_id, text, position) VALUES ('s1', ?, 'Stir', 0)`, testRecipeID)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, testRecipeID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM instructions`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("instructions left after recipe delete: %d", count)
	}
}

func TestConstraint_TotalTimeGenerated(t *testing.T) {
	s := createFileStore(t)
	seedRecipe(t, s)

	if _, err := s.db.Exec(`UPDATE recipes SET cook_time = 30, prep_time = NULL WHERE id = ?`, testRecipeID); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var total int
	if err := s.db.QueryRow(`SELECT total_time FROM recipes WHERE id = ?`, testRecipeID).Scan(&total); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if total != 30 {
		t.Errorf("total_time = %d, want 30", total)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := createFileStore(t)
	ctx := context.Background()

	sentinel := model.NewValidationError("abort")
	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.CreateCollection(ctx, model.Collection{ID: "c-rollback", Name: "tmp"}); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("WithTx() error = %v, want the callback's error unchanged", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM collections WHERE id = 'c-rollback'`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Error("collection committed despite callback error")
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	s := createFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithTx(ctx, func(tx *Tx) error { return nil })
	if !model.IsStorage(err) {
		t.Errorf("WithTx() on canceled context error = %v, want STORAGE", err)
	}
}

// Helpers

func createFileStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	// table_xinfo includes generated columns.
	rows, err := db.Query("PRAGMA table_xinfo(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid, notnull, pk, hidden int
		var name, ctype string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk, &hidden); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
