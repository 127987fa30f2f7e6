// Package config loads the mise configuration file.
//
// The file is CUE. It is unified with the embedded #Config schema, which is
// closed, so unknown fields and out-of-range values are rejected before any
// value is read. Example:
//
//	database: driver: "pgx"
//	database: dsn:    "postgres://localhost/mise"
//	paging: max_limit: 50
//	log: level: "debug"
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/paging"
)

//go:embed schema.cue
var schemaSource string

// Defaults.
const (
	DefaultDriver = "sqlite3"
	DefaultDSN    = "mise.db"
)

// Config is the resolved configuration.
type Config struct {
	Database Database
	Paging   paging.Limits
	LogLevel slog.Level
}

// Database selects the storage driver and data source.
type Database struct {
	Driver string
	DSN    string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: Database{Driver: DefaultDriver, DSN: DefaultDSN},
		Paging:   paging.DefaultLimits(),
		LogLevel: slog.LevelInfo,
	}
}

// Load reads and validates the configuration file at path. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, model.WrapValidationError(fmt.Sprintf("read config %s", path), err)
	}
	return Parse(path, data)
}

// Parse validates CUE source against the schema and resolves it over the
// defaults. filename is used in error positions only.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	file := ctx.CompileBytes(src, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, configError(err)
	}

	v := schema.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, configError(err)
	}

	cfg := Default()
	if s, ok, err := lookupString(v, "database.driver"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.Database.Driver = s
	}
	if s, ok, err := lookupString(v, "database.dsn"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.Database.DSN = s
	}
	if n, ok, err := lookupInt(v, "paging.default_limit"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.Paging.Default = n
	}
	if n, ok, err := lookupInt(v, "paging.max_limit"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.Paging.Max = n
	}
	if s, ok, err := lookupString(v, "log.level"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.LogLevel = levels[s]
	}

	if cfg.Paging.Default > cfg.Paging.Max {
		return Config{}, model.NewValidationError(fmt.Sprintf(
			"%s: paging.default_limit (%d) exceeds paging.max_limit (%d)",
			filename, cfg.Paging.Default, cfg.Paging.Max))
	}
	return cfg, nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// lookupString returns the concrete string at path. Absent optional fields
// report ok == false.
func lookupString(v cue.Value, path string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || !f.IsConcrete() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, configError(err)
	}
	return s, true, nil
}

func lookupInt(v cue.Value, path string) (int, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || !f.IsConcrete() {
		return 0, false, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, false, configError(err)
	}
	return int(n), true, nil
}

// configError converts a CUE error into a VALIDATION error that keeps the
// position of the first problem.
func configError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return model.WrapValidationError("invalid config", err)
	}

	first := errs[0]
	msg := first.Error()
	if pos := cueerrors.Positions(first); len(pos) > 0 && pos[0].IsValid() {
		msg = fmt.Sprintf("%s:%d:%d: %s", pos[0].Filename(), pos[0].Line(), pos[0].Column(), msg)
	}
	return model.WrapValidationError("invalid config: "+msg, err)
}
