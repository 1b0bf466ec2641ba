package repository

import "context"

// Filters is an exact-match key/value map. Range and operator queries are
// not supported at this layer; they belong to the specialized repositories.
type Filters map[string]any

// Identifiable is the minimal shape the decorators need from an entity.
type Identifiable interface {
	GetID() string
}

// Repository is the uniform CRUD contract over a persisted entity type.
// FindByID returns apperr.ErrNotFound for the "no row" case; lookup paths
// may treat that as a normal negative result.
type Repository[T Identifiable] interface {
	FindAll(ctx context.Context, filters Filters) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id string, changes map[string]any) (*T, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filters Filters) (int64, error)
}
