package cli

import (
	"log/slog"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/mise/internal/clock"
	"github.com/roach88/mise/internal/config"
	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/metrics"
	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/recipes"
	"github.com/roach88/mise/internal/store"
)

// env is what a command needs to run against the recipe core.
type env struct {
	svc     *recipes.Service
	store   *store.Store
	metrics *metrics.Collector
	out     *OutputFormatter
	tenant  model.TenantContext
}

// openEnv loads configuration, opens the store and builds the service.
// The returned close function must be called when the command finishes.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, func(), error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, out.Fail("failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.DSN = opts.Database
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}

	// Configure logging based on config and verbose flag
	logLevel := cfg.LogLevel
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Debug("opening database", "driver", cfg.Database.Driver, "dsn", cfg.Database.DSN)
	st, err := store.OpenDriver(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		if model.CodeOf(err) == "" {
			err = model.WrapStorageError("open database", err)
		}
		return nil, nil, out.Fail("failed to open database", err)
	}

	gen := opts.IDs
	if gen == nil {
		gen = ids.UUIDv7Generator{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	m := metrics.NewCollector()
	svc := recipes.New(st, gen,
		recipes.WithClock(clk),
		recipes.WithLogger(logger),
		recipes.WithMetrics(m),
		recipes.WithLimits(cfg.Paging),
	)

	e := &env{
		svc:     svc,
		store:   st,
		metrics: m,
		out:     out,
		tenant:  model.TenantContext{UserID: opts.User, CollectionIDs: opts.Collections},
	}
	closeFn := func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}
	return e, closeFn, nil
}

// runWithEnv opens an env, runs fn and maps its error to an ExitError.
func runWithEnv(opts *RootOptions, cmd *cobra.Command, message string, fn func(e *env) (any, error)) error {
	e, closeFn, err := openEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := fn(e)
	if opts.Verbose {
		e.dumpMetrics()
	}
	if err != nil {
		return e.out.Fail(message, err)
	}
	return e.out.Success(result)
}

// dumpMetrics writes the collected metrics in Prometheus text format to the
// diagnostic writer.
func (e *env) dumpMetrics() {
	families, err := e.metrics.Registry().Gather()
	if err != nil {
		slog.Warn("gather metrics", "error", err)
		return
	}
	w := e.out.GetErrWriter()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			slog.Warn("write metrics", "error", err)
			return
		}
	}
}
