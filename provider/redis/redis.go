package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/multicache/provider"
)

const defaultScanCount = 100

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	prefixKeys  bool
	scanCount   int64
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient
	// KeyPrefix is prepended to every key when PrefixKeys is set. Clear
	// removes KeyPrefix+"*"; without PrefixKeys it removes "*".
	KeyPrefix   string
	PrefixKeys  bool
	ScanCount   int64 // SCAN COUNT hint for Clear; 0 => 100
	CloseClient bool  // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Redis{
		rdb:         cfg.Client,
		prefix:      cfg.KeyPrefix,
		prefixKeys:  cfg.PrefixKeys,
		scanCount:   count,
		closeClient: cfg.CloseClient,
	}, nil
}

func (p *Redis) key(k string) string {
	if p.prefixKeys {
		return p.prefix + k
	}
	return k
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, p.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}

	err := p.rdb.Set(ctx, p.key(key), value, ttl).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, p.key(key)).Err()
}

// Clear scans for the cache's keys and deletes them. Keys are deleted one
// per command (pipelined) so cluster deployments never see CROSSSLOT.
func (p *Redis) Clear(ctx context.Context) error {
	pattern := "*"
	if p.prefixKeys {
		pattern = p.prefix + "*"
	}
	if cc, ok := p.rdb.(*goredis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			return p.clearNode(ctx, node, pattern)
		})
	}
	return p.clearNode(ctx, p.rdb, pattern)
}

func (p *Redis) clearNode(ctx context.Context, c goredis.Cmdable, pattern string) error {
	var keys []string
	iter := c.Scan(ctx, 0, pattern, p.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	_, err := c.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		return nil
	})
	return err
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
