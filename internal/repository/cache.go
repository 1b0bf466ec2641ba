package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/voltio/panelquote/internal/cache"
	"github.com/voltio/panelquote/internal/platform/logger"
)

// CacheDecorator wraps a Repository with read-through caching. Reads consult
// the store first; every successful write invalidates the per-id key and all
// list/count keys for the prefix (pattern eviction — any write evicts every
// cached list for the entity type).
type CacheDecorator[T Identifiable] struct {
	inner  Repository[T]
	store  cache.Store
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewCacheDecorator[T Identifiable](inner Repository[T], store cache.Store, prefix string, ttl time.Duration, log *logger.Logger) *CacheDecorator[T] {
	return &CacheDecorator[T]{inner: inner, store: store, prefix: prefix, ttl: ttl, log: log}
}

func (d *CacheDecorator[T]) idKey(id string) string { return d.prefix + ":" + id }

func (d *CacheDecorator[T]) filterKey(kind string, filters Filters) string {
	encoded, err := json.Marshal(filters)
	if err != nil {
		encoded = []byte("{}")
	}
	return d.prefix + ":" + kind + ":" + string(encoded)
}

func (d *CacheDecorator[T]) FindAll(ctx context.Context, filters Filters) ([]T, error) {
	key := d.filterKey("all", filters)
	if data, ok := d.store.Get(ctx, key); ok {
		var out []T
		if err := json.Unmarshal(data, &out); err == nil {
			d.log.Debug("cache hit", "key", key)
			return out, nil
		}
		d.store.Delete(ctx, key)
	}

	out, err := d.inner.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		d.store.Set(ctx, key, data, d.ttl)
		d.log.Debug("cache set", "key", key)
	}
	return out, nil
}

func (d *CacheDecorator[T]) FindByID(ctx context.Context, id string) (*T, error) {
	key := d.idKey(id)
	if data, ok := d.store.Get(ctx, key); ok {
		var entity T
		if err := json.Unmarshal(data, &entity); err == nil {
			d.log.Debug("cache hit", "key", key)
			return &entity, nil
		}
		d.store.Delete(ctx, key)
	}

	entity, err := d.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entity); err == nil {
		d.store.Set(ctx, key, data, d.ttl)
	}
	return entity, nil
}

func (d *CacheDecorator[T]) Create(ctx context.Context, entity *T) (*T, error) {
	created, err := d.inner.Create(ctx, entity)
	if err != nil {
		return nil, err
	}
	d.invalidateListCaches(ctx)
	if data, err := json.Marshal(created); err == nil {
		d.store.Set(ctx, d.idKey((*created).GetID()), data, d.ttl)
	}
	return created, nil
}

func (d *CacheDecorator[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	updated, err := d.inner.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	d.store.Delete(ctx, d.idKey(id))
	d.invalidateListCaches(ctx)
	return updated, nil
}

func (d *CacheDecorator[T]) Delete(ctx context.Context, id string) error {
	if err := d.inner.Delete(ctx, id); err != nil {
		return err
	}
	d.store.Delete(ctx, d.idKey(id))
	d.invalidateListCaches(ctx)
	return nil
}

func (d *CacheDecorator[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	key := d.filterKey("count", filters)
	if data, ok := d.store.Get(ctx, key); ok {
		if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
			return n, nil
		}
		d.store.Delete(ctx, key)
	}

	n, err := d.inner.Count(ctx, filters)
	if err != nil {
		return 0, err
	}
	d.store.Set(ctx, key, []byte(strconv.FormatInt(n, 10)), d.ttl)
	return n, nil
}

func (d *CacheDecorator[T]) invalidateListCaches(ctx context.Context) {
	d.store.DeletePrefix(ctx, d.prefix+":all:")
	d.store.DeletePrefix(ctx, d.prefix+":count:")
}
