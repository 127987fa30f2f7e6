// Package recipes implements the recipe operations: keyset-paginated
// listing and transactional full-replace updates, plus the supporting
// create, read, like, cover and delete operations.
//
// Every operation runs in exactly one store transaction and is scoped to
// the caller's model.TenantContext. Errors are *model.Error values and are
// returned, never logged and swallowed.
package recipes

import (
	"io"
	"log/slog"

	"github.com/roach88/mise/internal/clock"
	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/metrics"
	"github.com/roach88/mise/internal/paging"
	"github.com/roach88/mise/internal/store"
)

// Service is the recipe core. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	store   *store.Store
	ids     ids.Generator
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Collector
	limits  paging.Limits
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for created_at/updated_at.
//
// Default: clock.System{}
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collector. Default: none.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimits sets the page size limits.
//
// Default: paging.DefaultLimits()
func WithLimits(l paging.Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

// New creates a Service over the given store. gen supplies ids for new
// recipes and items.
func New(st *store.Store, gen ids.Generator, opts ...Option) *Service {
	s := &Service{
		store:  st,
		ids:    gen,
		clock:  clock.System{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		limits: paging.DefaultLimits(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
