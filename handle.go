package multicache

import (
	"context"

	"github.com/unkn0wn-root/multicache/internal/wire"
	pr "github.com/unkn0wn-root/multicache/provider"
)

type handle struct {
	name     string
	settings Settings
	provider pr.Provider
	log      Logger
	hooks    Hooks
}

var _ Handle = (*handle)(nil)

func (h *handle) Name() string       { return h.name }
func (h *handle) Settings() Settings { return h.settings }

func (h *handle) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := h.provider.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	payload, null, err := wire.Decode(raw)
	if err != nil {
		_ = h.provider.Del(ctx, key) // self-heal corrupt
		h.hooks.DecodeFailed(h.name, key, err)
		return nil, false, nil
	}
	if null {
		return nil, true, nil
	}
	return payload, true, nil
}

func (h *handle) Put(ctx context.Context, key string, value []byte) error {
	var b []byte
	if value == nil {
		if !h.settings.CacheNullValues {
			return ErrNullValue
		}
		b = wire.EncodeNull()
	} else {
		b = wire.EncodeValue(value)
	}
	ok, err := h.provider.Set(ctx, key, b, int64(len(b)), h.settings.TTL)
	if err != nil {
		return err
	}
	if !ok {
		h.log.Debug("put rejected by provider (pressure)", Fields{"cache": h.name, "key": key})
		h.hooks.SetRejected(h.name, key)
	}
	return nil
}

func (h *handle) Evict(ctx context.Context, key string) error {
	return h.provider.Del(ctx, key)
}

func (h *handle) EvictAll(ctx context.Context) error {
	if h.settings.Backend == Remote && !h.settings.PrefixKeys {
		h.log.Warn("evicting all keys of an unprefixed remote cache", Fields{"cache": h.name})
		h.hooks.UnprefixedEvictAll(h.name)
	}
	return h.provider.Clear(ctx)
}

func (h *handle) Stats() (pr.Stats, bool) {
	if sr, ok := h.provider.(pr.StatsReporter); ok {
		return sr.Stats()
	}
	return pr.Stats{}, false
}

func (h *handle) close(ctx context.Context) error {
	return h.provider.Close(ctx)
}
