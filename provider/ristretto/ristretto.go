package ristretto

import (
	"context"
	"errors"
	"math"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/multicache/localspec"
	pr "github.com/unkn0wn-root/multicache/provider"
)

const (
	defaultCounters = 100_000
	defaultBuffer   = 64
	unbounded       = math.MaxInt64 >> 1
)

var (
	ErrInvalidConfig = errors.New("ristretto: invalid config")
	// ErrRefresh is returned for refreshAfterWrite, which needs a loading cache.
	ErrRefresh = errors.New("ristretto: refreshAfterWrite requires a loading cache")
)

type Provider struct {
	c *rc.Cache

	weighted  bool
	metrics   bool
	writeTTL  time.Duration
	accessTTL time.Duration
	now       func() time.Time
}

var (
	_ pr.Provider      = (*Provider)(nil)
	_ pr.StatsReporter = (*Provider)(nil)
)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool

	// Weighted charges every entry its byte size instead of 1.
	Weighted bool
	// ExpireAfterWrite bounds an entry's age; ExpireAfterAccess its idle
	// time. 0 disables either.
	ExpireAfterWrite  time.Duration
	ExpireAfterAccess time.Duration
}

type entry struct {
	b       []byte
	cost    int64
	written time.Time
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.ExpireAfterWrite < 0 || cfg.ExpireAfterAccess < 0 {
		return nil, ErrInvalidConfig
	}
	// MaxCost counts entries or value bytes only, never ristretto's per-item
	// bookkeeping.
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{
		c:         c,
		weighted:  cfg.Weighted,
		metrics:   cfg.Metrics,
		writeTTL:  cfg.ExpireAfterWrite,
		accessTTL: cfg.ExpireAfterAccess,
		now:       time.Now,
	}, nil
}

// FromSpec translates a local spec into a Config.
//   - maximumSize => MaxCost with cost 1 per entry
//   - maximumWeight => MaxCost with cost = value size
//   - neither => effectively unbounded
//   - expireAfterWrite / expireAfterAccess => per-entry TTL; a zero duration
//     expires entries immediately
//   - recordStats => Metrics
//   - reference strength directives are ignored
func FromSpec(s localspec.Spec) (*Provider, error) {
	if s.RefreshAfterWrite != localspec.Unset {
		return nil, ErrRefresh
	}
	cfg := Config{
		NumCounters: defaultCounters,
		MaxCost:     unbounded,
		BufferItems: defaultBuffer,
		Metrics:     s.RecordStats,
	}
	switch {
	case s.MaximumSize != localspec.Unset:
		if s.MaximumSize == 0 {
			return nil, errors.New("ristretto: maximumSize must be positive")
		}
		cfg.MaxCost = s.MaximumSize
		cfg.NumCounters = max(10*s.MaximumSize, 100)
	case s.MaximumWeight != localspec.Unset:
		if s.MaximumWeight == 0 {
			return nil, errors.New("ristretto: maximumWeight must be positive")
		}
		cfg.MaxCost = s.MaximumWeight
		cfg.Weighted = true
	case s.InitialCapacity > 0:
		cfg.NumCounters = max(10*s.InitialCapacity, 100)
	}
	cfg.ExpireAfterWrite = expiry(s.ExpireAfterWrite)
	cfg.ExpireAfterAccess = expiry(s.ExpireAfterAccess)
	return New(cfg)
}

// Driver builds a provider per cache from its spec.
func Driver(_ string, s localspec.Spec) (pr.Provider, error) {
	p, err := FromSpec(s)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func expiry(d time.Duration) time.Duration {
	switch {
	case d == localspec.Unset:
		return 0
	case d == 0:
		// ristretto treats 0 as "never"; the smallest TTL is "at once".
		return time.Nanosecond
	default:
		return d
	}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	e, ok := v.(entry)
	if !ok {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	if p.accessTTL > 0 {
		ttl := p.ttl(e.written)
		if ttl <= 0 {
			p.c.Del(key)
			return nil, false, nil
		}
		// updates of present keys are applied synchronously
		p.c.SetWithTTL(key, e, e.cost, ttl)
	}
	return e.b, true, nil
}

// Set ignores the caller's ttl; expiry comes from the directives. cost is used
// only for weighted caches. Set waits for the write to be applied so a
// following Get observes it.
func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, _ time.Duration) (bool, error) {
	now := p.now()
	if !p.weighted {
		cost = 1
	}
	ok := p.c.SetWithTTL(key, entry{b: value, cost: cost, written: now}, cost, p.ttl(now))
	p.c.Wait()
	return ok, nil
}

// ttl returns the time an entry written at written may still live: the
// access window, capped by what remains of the write window.
func (p *Provider) ttl(written time.Time) time.Duration {
	ttl := p.accessTTL
	if p.writeTTL > 0 {
		left := p.writeTTL - p.now().Sub(written)
		if ttl == 0 || left < ttl {
			ttl = left
		}
	}
	return ttl
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Clear(_ context.Context) error {
	p.c.Clear()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

func (p *Provider) Stats() (pr.Stats, bool) {
	if !p.metrics {
		return pr.Stats{}, false
	}
	return pr.Stats{Hits: p.c.Metrics.Hits(), Misses: p.c.Metrics.Misses()}, true
}

// Metrics exposes ristretto's own counters (nil unless recordStats).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
