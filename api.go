package multicache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/multicache/localspec"
	pr "github.com/unkn0wn-root/multicache/provider"
)

// Handle is one named cache bound to its backend.
// Values are opaque bytes; use Typed for codec-backed access.
type Handle interface {
	Name() string
	Settings() Settings

	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// A cached null is reported as (nil, true, nil); a cached empty value
	// is a non-nil empty slice.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put stores value. A nil value stores a null; handles that do not
	// cache nulls return ErrNullValue.
	Put(ctx context.Context, key string, value []byte) error
	Evict(ctx context.Context, key string) error
	EvictAll(ctx context.Context) error

	// Stats reports hit/miss counters when the backend records them.
	Stats() (s pr.Stats, ok bool)
}

// Settings is the resolved, comparable configuration of a handle.
type Settings struct {
	Backend Backend

	// Remote only.
	TTL        time.Duration
	KeyPrefix  string // resolved "<app>-<prefix>::"
	PrefixKeys bool

	CacheNullValues bool

	// Local only: the directive string the driver was built from.
	Spec string
}

// LocalDriver builds the provider of one local cache from its parsed spec.
// provider/ristretto.Driver and provider/bigcache.Driver satisfy it.
type LocalDriver func(name string, spec localspec.Spec) (pr.Provider, error)

// Options carry the collaborators Build needs besides the Config.
type Options struct {
	// ApplicationName composes remote key prefixes. Required when remote
	// caches are configured.
	ApplicationName string

	// RedisClient backs remote caches. It is shared by every remote handle
	// and is not closed by Registry.Close.
	RedisClient goredis.UniversalClient

	LocalDriver LocalDriver // nil => ristretto
	Logger      Logger      // nil => NopLogger
	Hooks       Hooks       // nil => NopHooks
}
