package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EntityCursor iterates a driver cursor, decoding each document into T.
type EntityCursor[T any] struct {
	cursor *mongo.Cursor
}

// NewEntityCursor wraps cursor.
func NewEntityCursor[T any](cursor *mongo.Cursor) *EntityCursor[T] {
	return &EntityCursor[T]{cursor: cursor}
}

// Next advances to the next document.
func (c *EntityCursor[T]) Next(ctx context.Context) bool {
	return c.cursor.Next(ctx)
}

// Decode decodes the current document.
func (c *EntityCursor[T]) Decode() (*T, error) {
	var entity T
	if err := c.cursor.Decode(&entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// All drains and closes the cursor.
func (c *EntityCursor[T]) All(ctx context.Context) ([]*T, error) {
	var out []*T
	if err := c.cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Each calls fn for every remaining entity and closes the cursor. Iteration
// stops at the first error.
func (c *EntityCursor[T]) Each(ctx context.Context, fn func(*T) error) error {
	defer c.cursor.Close(ctx)

	for c.cursor.Next(ctx) {
		entity, err := c.Decode()
		if err != nil {
			return err
		}
		if err := fn(entity); err != nil {
			return err
		}
	}
	return c.cursor.Err()
}

// Err returns the last iteration error.
func (c *EntityCursor[T]) Err() error {
	return c.cursor.Err()
}

// Close closes the underlying cursor.
func (c *EntityCursor[T]) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}

// Raw returns the underlying driver cursor.
func (c *EntityCursor[T]) Raw() *mongo.Cursor {
	return c.cursor
}
