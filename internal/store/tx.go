package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
)

// Tx is an open transaction. It is only valid inside the WithTx callback
// that received it.
type Tx struct {
	tx       *sql.Tx
	dialect  keyset.Dialect
	compiler *keyset.Compiler
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// execOne runs a statement that must affect exactly one row. Zero rows is
// reported as NOT_FOUND for resource/id.
func (t *Tx) execOne(ctx context.Context, op, resource, id, query string, args ...any) error {
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return model.WrapStorageError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.WrapStorageError(op, err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return model.NewNotFoundError(resource, id)
	default:
		return model.NewInvariantError(op + ": affected more than one row")
	}
}

// scope restricts recipe rows to the tenant's visible collections.
func scope(tenant model.TenantContext) keyset.Predicate {
	return keyset.In{Column: "collection_id", Values: tenant.CollectionIDs}
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(n int64) time.Time {
	return time.UnixMicro(n).UTC()
}

func nullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	v := fromMicros(n.Int64)
	return &v
}
