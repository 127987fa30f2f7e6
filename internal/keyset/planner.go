package keyset

import (
	"fmt"

	"github.com/roach88/mise/internal/cursor"
	"github.com/roach88/mise/internal/model"
)

// IDColumn is the unique tiebreaker appended to every ordering.
const IDColumn = "id"

// columns maps each sort field to the column that stores it.
var columns = map[model.SortField]string{
	model.SortTitle:     "title",
	model.SortUpdatedAt: "updated_at",
	model.SortCreatedAt: "created_at",
}

// Column resolves a sort field to its column name.
func Column(field model.SortField) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", model.NewValidationError(fmt.Sprintf("unknown sort field %q", field))
	}
	return col, nil
}

// Planner produces the ordering and seek predicate for one sort
// configuration.
type Planner struct {
	field  model.SortField
	order  model.SortOrder
	column string
}

// NewPlanner validates a sort configuration.
func NewPlanner(field model.SortField, order model.SortOrder) (*Planner, error) {
	col, err := Column(field)
	if err != nil {
		return nil, err
	}
	if !order.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown sort order %q", order))
	}
	return &Planner{field: field, order: order, column: col}, nil
}

// Field returns the planned sort field.
func (p *Planner) Field() model.SortField { return p.field }

// Order returns the planned sort order.
func (p *Planner) Order() model.SortOrder { return p.order }

// OrderBy returns the primary ordering. The compiler appends id in the same
// direction.
func (p *Planner) OrderBy() OrderBy {
	return OrderBy{Column: p.column, Order: p.order}
}

// Seek returns the seek predicate for a decoded cursor, or nil when c is nil
// (first page). A cursor issued for another sort configuration is a
// CONSISTENCY error.
func (p *Planner) Seek(c *cursor.Cursor) (*Seek, error) {
	if c == nil {
		return nil, nil
	}
	if err := cursor.Validate(*c, p.field, p.order); err != nil {
		return nil, err
	}
	return &Seek{
		Column: p.column,
		Order:  p.order,
		Value:  Param(c.LastValue),
		ID:     c.LastID,
	}, nil
}

// Param converts a cursor value to its stored representation. Timestamps are
// stored as unix microseconds.
func Param(v cursor.Value) any {
	if v.Kind() == model.KindTime {
		return v.Time().UnixMicro()
	}
	return v.Interface()
}
