package multicache

import (
	"fmt"
	"sort"
	"time"
)

// Backend identifies which kind of store serves a cache.
type Backend int

const (
	Local Backend = iota + 1
	Remote
)

func (b Backend) String() string {
	switch b {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// Flag is a tri-state enablement switch. The zero value is Unset.
type Flag int

const (
	Unset Flag = iota
	Enabled
	Disabled
)

// ParseFlag converts raw settings text into a Flag.
// Only the exact text "true" enables a backend; "" is Unset and anything
// else (including "false") is Disabled.
func ParseFlag(raw string) Flag {
	switch raw {
	case "":
		return Unset
	case "true":
		return Enabled
	default:
		return Disabled
	}
}

func (f Flag) Enabled() bool { return f == Enabled }

func (f Flag) String() string {
	switch f {
	case Enabled:
		return "true"
	case Disabled:
		return "false"
	default:
		return "unset"
	}
}

// RemoteSpec describes one remote cache.
// Use DefaultRemoteSpec to get the documented defaults; the Go zero value has
// both booleans false.
type RemoteSpec struct {
	TimeToLive      time.Duration // 0 => entries never expire
	CacheNullValues bool
	KeyPrefix       string // "" => derive the prefix from the cache name
	UseKeyPrefix    bool
}

// DefaultRemoteSpec returns a RemoteSpec with null caching and key
// prefixing on and no TTL.
func DefaultRemoteSpec() RemoteSpec {
	return RemoteSpec{CacheNullValues: true, UseKeyPrefix: true}
}

func (s RemoteSpec) String() string {
	return fmt.Sprintf("RemoteSpec{ttl=%s cacheNullValues=%t keyPrefix=%q useKeyPrefix=%t}",
		s.TimeToLive, s.CacheNullValues, s.KeyPrefix, s.UseKeyPrefix)
}

// LocalSpec describes one local cache. Spec is handed to the local driver
// untouched; see package localspec for the directive grammar.
type LocalSpec struct {
	Spec string
}

func (s LocalSpec) String() string { return fmt.Sprintf("LocalSpec{spec=%q}", s.Spec) }

// Config is the administrator-supplied cache layout.
// It is read once by Build and never modified.
type Config struct {
	EnableRemote Flag
	EnableLocal  Flag
	Remote       map[string]RemoteSpec
	Local        map[string]LocalSpec
}

// Validate runs the consistency checks Build runs, without constructing
// anything.
func (c Config) Validate() error {
	return c.validate(NopLogger{})
}

func (c Config) validate(log Logger) error {
	remoteEnabled, remoteDefined := c.EnableRemote.Enabled(), len(c.Remote) > 0
	localEnabled, localDefined := c.EnableLocal.Enabled(), len(c.Local) > 0

	switch {
	case remoteEnabled && !remoteDefined:
		return &ConfigError{Kind: ErrRemoteCachesEnabledButUndefined}
	case !remoteEnabled && remoteDefined:
		return &ConfigError{Kind: ErrRemoteCachesDefinedButDisabled, Names: sortedKeys(c.Remote)}
	case !remoteEnabled && !remoteDefined:
		log.Info("multicache: no remote caches created", nil)
	}

	switch {
	case localEnabled && !localDefined:
		return &ConfigError{Kind: ErrLocalCachesEnabledButUndefined}
	case !localEnabled && localDefined:
		return &ConfigError{Kind: ErrLocalCachesDefinedButDisabled, Names: sortedKeys(c.Local)}
	case !localEnabled && !localDefined:
		log.Info("multicache: no local caches created", nil)
	}

	if remoteDefined && localDefined {
		var dup []string
		for name := range c.Remote {
			if _, ok := c.Local[name]; ok {
				dup = append(dup, name)
			}
		}
		if len(dup) > 0 {
			sort.Strings(dup)
			return &ConfigError{Kind: ErrDuplicateCacheName, Names: dup}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
