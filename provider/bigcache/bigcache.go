package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/multicache/localspec"
	pr "github.com/unkn0wn-root/multicache/provider"
)

const (
	defaultShards  = 64
	defaultEntries = 1024
	defaultEntry   = 256
	// BigCache has no "never expire"; a century is close enough.
	noExpiry = 100 * 365 * 24 * time.Hour
	mb       = 1 << 20
)

var ErrRefresh = errors.New("bigcache: refreshAfterWrite requires a loading cache")

type Provider struct {
	c     *bc.BigCache
	stats bool
}

var (
	_ pr.Provider      = (*Provider)(nil)
	_ pr.StatsReporter = (*Provider)(nil)
)

type Config struct {
	LifeWindow         time.Duration // 0 = entries never expire
	CleanWindow        time.Duration
	Shards             int // power of two; 0 = 64
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
	Stats              bool
}

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = noExpiry
	}
	conf := bc.DefaultConfig(life)
	conf.Shards = defaultShards
	conf.MaxEntriesInWindow = defaultEntries
	conf.MaxEntrySize = defaultEntry
	conf.Verbose = false
	if cfg.LifeWindow <= 0 {
		conf.CleanWindow = 0
	}
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.StatsEnabled = cfg.Stats
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, stats: cfg.Stats}, nil
}

// FromSpec translates a local spec. BigCache expires by a single global
// window, so expireAfterAccess is treated like expireAfterWrite and the
// shorter of the two wins. maximumSize only sizes the initial allocation;
// maximumWeight becomes HardMaxCacheSize rounded up to whole megabytes.
func FromSpec(s localspec.Spec) (*Provider, error) {
	if s.RefreshAfterWrite != localspec.Unset {
		return nil, ErrRefresh
	}
	cfg := Config{Stats: s.RecordStats}
	for _, d := range []time.Duration{s.ExpireAfterWrite, s.ExpireAfterAccess} {
		if d == localspec.Unset {
			continue
		}
		if d < time.Second {
			// BigCache tracks time in whole seconds.
			d = time.Second
		}
		if cfg.LifeWindow == 0 || d < cfg.LifeWindow {
			cfg.LifeWindow = d
		}
	}
	switch {
	case s.InitialCapacity > 0:
		cfg.MaxEntriesInWindow = int(s.InitialCapacity)
	case s.MaximumSize > 0:
		cfg.MaxEntriesInWindow = int(s.MaximumSize)
	}
	if s.MaximumWeight > 0 {
		cfg.HardMaxCacheSizeMB = int((s.MaximumWeight + mb - 1) / mb)
	}
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

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	return true, p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Clear(_ context.Context) error {
	return p.c.Reset()
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}

func (p *Provider) Stats() (pr.Stats, bool) {
	if !p.stats {
		return pr.Stats{}, false
	}
	s := p.c.Stats()
	return pr.Stats{Hits: uint64(s.Hits), Misses: uint64(s.Misses)}, true
}
