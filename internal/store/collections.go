package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/mise/internal/model"
)

// CreateCollection stores a collection. Collections are managed outside
// this module; they exist here as the owner of recipes.
func (t *Tx) CreateCollection(ctx context.Context, c model.Collection) error {
	_, err := t.exec(ctx, `INSERT INTO collections (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, toMicros(c.CreatedAt))
	return model.WrapStorageError("create collection", err)
}

// GetCollection returns a collection by id.
func (t *Tx) GetCollection(ctx context.Context, id string) (model.Collection, error) {
	var (
		c         model.Collection
		createdAt int64
	)
	err := t.queryRow(ctx, `SELECT id, name, created_at FROM collections WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Collection{}, model.NewNotFoundError("collection", id)
	}
	if err != nil {
		return model.Collection{}, model.WrapStorageError("get collection", err)
	}
	c.CreatedAt = fromMicros(createdAt)
	return c, nil
}
