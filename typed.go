package multicache

import (
	"context"

	c "github.com/unkn0wn-root/multicache/codec"
)

// Typed is a codec-backed view of a Handle.
type Typed[V any] struct {
	h     Handle
	codec c.Codec[V]
	hooks Hooks
}

// NewTyped wraps h. hooks may be nil.
func NewTyped[V any](h Handle, codec c.Codec[V], hooks Hooks) *Typed[V] {
	return &Typed[V]{h: h, codec: codec, hooks: coalesce[Hooks](hooks, NopHooks{})}
}

func (t *Typed[V]) Handle() Handle { return t.h }

// Get decodes the cached value. Entries the codec cannot decode are evicted
// and reported as a miss; cached nulls also read as a miss.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := t.h.Get(ctx, key)
	if err != nil || !ok || raw == nil {
		return zero, false, err
	}
	v, err := t.codec.Decode(raw)
	if err != nil {
		_ = t.h.Evict(ctx, key) // self-heal
		t.hooks.DecodeFailed(t.h.Name(), key, err)
		return zero, false, nil
	}
	return v, true, nil
}

func (t *Typed[V]) Put(ctx context.Context, key string, v V) error {
	b, err := t.codec.Encode(v)
	if err != nil {
		return err
	}
	if b == nil {
		b = []byte{}
	}
	return t.h.Put(ctx, key, b)
}

func (t *Typed[V]) Evict(ctx context.Context, key string) error { return t.h.Evict(ctx, key) }
func (t *Typed[V]) EvictAll(ctx context.Context) error          { return t.h.EvictAll(ctx) }

// Cacheable is a read-through call: on a hit it returns the cached value,
// otherwise it runs load and caches its result. Load errors are returned and
// nothing is cached. A failing cache read falls through to load; a failing
// cache write is returned together with the loaded value.
func Cacheable[V any](ctx context.Context, t *Typed[V], key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok, err := t.Get(ctx, key); err == nil && ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	return v, t.Put(ctx, key, v)
}

// Evicting runs op and, when it succeeds, evicts key.
func Evicting[V any](ctx context.Context, t *Typed[V], key string, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		return err
	}
	return t.Evict(ctx, key)
}

// EvictingAll runs op and, when it succeeds, clears the whole cache.
func EvictingAll[V any](ctx context.Context, t *Typed[V], op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		return err
	}
	return t.EvictAll(ctx)
}
