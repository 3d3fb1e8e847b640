package repository

import (
	"context"
	"errors"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository persists records of one directory kind.
type Repository[T directory.Record] interface {
	Create(ctx context.Context, item T) error
	Get(ctx context.Context, id string) (T, error)
	// List returns every record ordered by the kind's sort key.
	List(ctx context.Context) ([]T, error)
	Replace(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}
