// Package paging orchestrates one keyset-paginated page fetch.
//
// GetPage asks its Fetcher for limit+1 rows. When the extra row exists it is
// not returned; it becomes the next cursor's boundary. Building the cursor
// from the first excluded row, rather than the last included one, keeps
// pages gap-free and duplicate-free when sort values tie across a page
// boundary.
package paging

import (
	"context"
	"fmt"

	"github.com/roach88/mise/internal/cursor"
	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Limits bounds the page size a caller may request.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the built-in page size limits.
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: MaxLimit}
}

// Resolve applies the limits to a requested page size: 0 selects the
// default, values above Max are clamped, negative values are rejected.
func (l Limits) Resolve(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, model.NewValidationError(fmt.Sprintf("limit must be at least 1, got %d", limit))
	case limit == 0:
		limit = l.Default
	}
	if l.Max > 0 && limit > l.Max {
		limit = l.Max
	}
	if limit < 1 {
		limit = 1
	}
	return limit, nil
}

// Request is one page request. Cursor is the token returned with the
// previous page, or empty for the first page.
type Request struct {
	Limit     int
	SortField model.SortField
	SortOrder model.SortOrder
	Cursor    string
}

// Page is one page of results. NextCursor is empty on the final page.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// HasMore reports whether another page follows.
func (p Page[T]) HasMore() bool { return p.NextCursor != "" }

// Window is what a Fetcher must return: at most Limit rows ordered by Sort
// (with id as tiebreaker) starting at Seek.
type Window struct {
	Sort  keyset.OrderBy
	Seek  *keyset.Seek
	Limit int
}

// Fetcher loads the rows of a window.
type Fetcher[T any] func(ctx context.Context, w Window) ([]T, error)

// KeyFunc extracts a row's sort value for field and its id.
type KeyFunc[T any] func(row T, field model.SortField) (cursor.Value, string)

// GetPage fetches one page.
func GetPage[T any](ctx context.Context, req Request, limits Limits, fetch Fetcher[T], key KeyFunc[T]) (Page[T], error) {
	planner, err := keyset.NewPlanner(req.SortField, req.SortOrder)
	if err != nil {
		return Page[T]{}, err
	}

	limit, err := limits.Resolve(req.Limit)
	if err != nil {
		return Page[T]{}, err
	}

	var seek *keyset.Seek
	if req.Cursor != "" {
		c, err := cursor.Decode(req.Cursor)
		if err != nil {
			return Page[T]{}, err
		}
		seek, err = planner.Seek(&c)
		if err != nil {
			return Page[T]{}, err
		}
	}

	rows, err := fetch(ctx, Window{Sort: planner.OrderBy(), Seek: seek, Limit: limit + 1})
	if err != nil {
		return Page[T]{}, err
	}
	if len(rows) > limit+1 {
		return Page[T]{}, model.NewInvariantError(fmt.Sprintf("fetched %d rows for a window of %d", len(rows), limit+1))
	}

	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}, nil
	}

	field := planner.Field()
	value, id := key(rows[limit], field)
	if err := checkBoundary(value, id, field); err != nil {
		return Page[T]{}, err
	}

	next, err := cursor.Encode(cursor.Cursor{
		LastValue: value,
		SortOrder: planner.Order(),
		SortField: field,
		LastID:    id,
	})
	if err != nil {
		return Page[T]{}, &model.Error{Code: model.ErrCodeInvariant, Message: "boundary row cannot be encoded", Err: err}
	}

	return Page[T]{Items: rows[:limit], NextCursor: next}, nil
}

// checkBoundary rejects a boundary row with a missing NOT NULL sort value.
func checkBoundary(v cursor.Value, id string, field model.SortField) error {
	missing := false
	switch v.Kind() {
	case model.KindString:
		missing = v.Str() == ""
	case model.KindTime:
		missing = v.Time().IsZero()
	case model.KindInteger:
	default:
		missing = true
	}
	if missing {
		return model.NewInvariantError(fmt.Sprintf("boundary row %s has no value for sort field %q", id, field))
	}
	if v.Kind() != field.ValueKind() {
		return model.NewInvariantError(fmt.Sprintf("boundary row %s has a %s value for sort field %q", id, v.Kind(), field))
	}
	if !ids.Valid(id) {
		return model.NewInvariantError(fmt.Sprintf("boundary row has invalid id %q", id))
	}
	return nil
}
