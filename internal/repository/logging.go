package repository

import (
	"context"
	"time"

	"github.com/voltio/panelquote/internal/platform/logger"
)

// LoggingDecorator logs an entry/exit pair with elapsed time around every
// repository call. It never suppresses or alters failures; errors are logged
// and returned unchanged. Nesting order matters: logging outside a cache
// decorator observes cache hits as fast calls.
type LoggingDecorator[T Identifiable] struct {
	inner  Repository[T]
	entity string
	log    *logger.Logger
}

func NewLoggingDecorator[T Identifiable](inner Repository[T], entity string, log *logger.Logger) *LoggingDecorator[T] {
	return &LoggingDecorator[T]{inner: inner, entity: entity, log: log}
}

func (d *LoggingDecorator[T]) FindAll(ctx context.Context, filters Filters) ([]T, error) {
	start := time.Now()
	d.log.Debug("finding all", "entity", d.entity, "filters", filters)
	out, err := d.inner.FindAll(ctx, filters)
	if err != nil {
		d.log.Error("find all failed", "entity", d.entity, "filters", filters, "error", err)
		return nil, err
	}
	d.log.Info("found all", "entity", d.entity, "count", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (d *LoggingDecorator[T]) FindByID(ctx context.Context, id string) (*T, error) {
	start := time.Now()
	d.log.Debug("finding by id", "entity", d.entity, "id", id)
	entity, err := d.inner.FindByID(ctx, id)
	if err != nil {
		d.log.Error("find by id failed", "entity", d.entity, "id", id, "error", err)
		return nil, err
	}
	d.log.Info("found by id", "entity", d.entity, "id", id, "elapsed", time.Since(start))
	return entity, nil
}

func (d *LoggingDecorator[T]) Create(ctx context.Context, entity *T) (*T, error) {
	start := time.Now()
	d.log.Debug("creating", "entity", d.entity)
	created, err := d.inner.Create(ctx, entity)
	if err != nil {
		d.log.Error("create failed", "entity", d.entity, "error", err)
		return nil, err
	}
	d.log.Info("created", "entity", d.entity, "id", (*created).GetID(), "elapsed", time.Since(start))
	return created, nil
}

func (d *LoggingDecorator[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	start := time.Now()
	d.log.Debug("updating", "entity", d.entity, "id", id, "changes", changes)
	updated, err := d.inner.Update(ctx, id, changes)
	if err != nil {
		d.log.Error("update failed", "entity", d.entity, "id", id, "error", err)
		return nil, err
	}
	d.log.Info("updated", "entity", d.entity, "id", id, "elapsed", time.Since(start))
	return updated, nil
}

func (d *LoggingDecorator[T]) Delete(ctx context.Context, id string) error {
	start := time.Now()
	d.log.Debug("deleting", "entity", d.entity, "id", id)
	if err := d.inner.Delete(ctx, id); err != nil {
		d.log.Error("delete failed", "entity", d.entity, "id", id, "error", err)
		return err
	}
	d.log.Info("deleted", "entity", d.entity, "id", id, "elapsed", time.Since(start))
	return nil
}

func (d *LoggingDecorator[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	start := time.Now()
	d.log.Debug("counting", "entity", d.entity, "filters", filters)
	n, err := d.inner.Count(ctx, filters)
	if err != nil {
		d.log.Error("count failed", "entity", d.entity, "filters", filters, "error", err)
		return 0, err
	}
	d.log.Info("counted", "entity", d.entity, "count", n, "elapsed", time.Since(start))
	return n, nil
}
