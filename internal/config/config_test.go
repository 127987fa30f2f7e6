package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/paging"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "mise.db", cfg.Database.DSN)
	assert.Equal(t, paging.Limits{Default: 20, Max: 100}, cfg.Paging)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mise.cue")
	src := `
database: {
	driver: "pgx"
	dsn:    "postgres://localhost/mise"
}
paging: max_limit: 50
log: level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/mise", cfg.Database.DSN)
	assert.Equal(t, paging.Limits{Default: 20, Max: 50}, cfg.Paging)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Parse("mise.cue", []byte(`log: level: "warn"`))
	require.NoError(t, err)

	want := Default()
	want.LogLevel = slog.LevelWarn
	assert.Equal(t, want, cfg)
}

func TestParse_EmptyFile(t *testing.T) {
	cfg, err := Parse("mise.cue", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown top-level field", `cache: size: 10`},
		{"unknown nested field", `database: host: "db"`},
		{"unknown driver", `database: driver: "mysql"`},
		{"empty dsn", `database: dsn: ""`},
		{"zero default limit", `paging: default_limit: 0`},
		{"non-integer limit", `paging: max_limit: "many"`},
		{"unknown log level", `log: level: "trace"`},
		{"default above max", `paging: {default_limit: 30, max_limit: 10}`},
		{"default above built-in max", `paging: default_limit: 500`},
		{"syntax error", `database: {`},
		{"incomplete value", `database: driver: string`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("mise.cue", []byte(tt.src))
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
}
