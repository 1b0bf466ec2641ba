package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/apperr"
)

// GormRepository is the storage-backed Repository implementation. It issues
// no raw SQL; filters translate to exact-match WHERE clauses.
type GormRepository[T Identifiable] struct {
	db     *gorm.DB
	entity string
}

func NewGormRepository[T Identifiable](db *gorm.DB, entity string) *GormRepository[T] {
	return &GormRepository[T]{db: db, entity: entity}
}

func (r *GormRepository[T]) FindAll(ctx context.Context, filters Filters) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if len(filters) > 0 {
		q = q.Where(map[string]any(filters))
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Persistence(r.entity, "find_all", err)
	}
	return out, nil
}

func (r *GormRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Persistence(r.entity, "find_by_id", err)
	}
	return &entity, nil
}

func (r *GormRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, apperr.Persistence(r.entity, "create", err)
	}
	return entity, nil
}

func (r *GormRepository[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, apperr.Persistence(r.entity, "update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormRepository[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return apperr.Persistence(r.entity, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if len(filters) > 0 {
		q = q.Where(map[string]any(filters))
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, apperr.Persistence(r.entity, "count", err)
	}
	return n, nil
}
