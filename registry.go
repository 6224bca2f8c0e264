package multicache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/unkn0wn-root/multicache/localspec"
	"github.com/unkn0wn-root/multicache/provider/redis"
	"github.com/unkn0wn-root/multicache/provider/ristretto"
)

// Registry maps cache names to handles. It is immutable after Build and safe
// for concurrent use.
type Registry struct {
	handles map[string]*handle
	names   []string
}

// Build validates cfg and constructs one handle per declared cache.
// Any error is a startup failure: no registry is returned and handles built
// before the failure are closed.
func Build(cfg Config, opts Options) (*Registry, error) {
	log := coalesce[Logger](opts.Logger, NopLogger{})
	hooks := coalesce[Hooks](opts.Hooks, NopHooks{})
	driver := opts.LocalDriver
	if driver == nil {
		driver = ristretto.Driver
	}

	if err := cfg.validate(log); err != nil {
		return nil, err
	}

	r := &Registry{handles: make(map[string]*handle, len(cfg.Remote)+len(cfg.Local))}
	fail := func(err error) (*Registry, error) {
		_ = r.Close(context.Background())
		return nil, err
	}

	if cfg.EnableRemote.Enabled() {
		log.Info("multicache: enabling remote caches", Fields{"count": len(cfg.Remote)})
		for _, name := range sortedKeys(cfg.Remote) {
			spec := cfg.Remote[name]
			log.Debug("multicache: remote cache", Fields{"name": name, "props": spec.String()})
			h, err := buildRemote(name, spec, opts)
			if err != nil {
				return fail(&BackendError{Cache: name, Backend: Remote, Err: err})
			}
			h.log, h.hooks = log, hooks
			r.handles[name] = h
		}
	}

	if cfg.EnableLocal.Enabled() {
		log.Info("multicache: enabling local caches", Fields{"count": len(cfg.Local)})
		for _, name := range sortedKeys(cfg.Local) {
			spec := cfg.Local[name]
			log.Debug("multicache: local cache", Fields{"name": name, "props": spec.String()})
			h, err := buildLocal(name, spec, driver)
			if err != nil {
				return fail(&BackendError{Cache: name, Backend: Local, Err: err})
			}
			h.log, h.hooks = log, hooks
			r.handles[name] = h
		}
	}

	r.names = sortedKeys(r.handles)
	log.Info("multicache: registry built", Fields{"caches": len(r.names)})
	return r, nil
}

// RemoteSettings resolves the handle settings of a remote cache.
// When UseKeyPrefix is false the handle neither prefixes keys nor caches null
// values, whatever CacheNullValues says.
func RemoteSettings(app, name string, spec RemoteSpec) Settings {
	prefix := app + "-" + name + "::"
	if spec.UseKeyPrefix && spec.KeyPrefix != "" {
		prefix = app + "-" + spec.KeyPrefix + "::"
	}
	s := Settings{
		Backend:         Remote,
		TTL:             spec.TimeToLive,
		KeyPrefix:       prefix,
		PrefixKeys:      true,
		CacheNullValues: spec.CacheNullValues,
	}
	if !spec.UseKeyPrefix {
		s.CacheNullValues = false
		s.PrefixKeys = false
	}
	return s
}

func buildRemote(name string, spec RemoteSpec, opts Options) (*handle, error) {
	if opts.ApplicationName == "" {
		return nil, ErrApplicationName
	}
	s := RemoteSettings(opts.ApplicationName, name, spec)
	p, err := redis.New(redis.Config{
		Client:     opts.RedisClient,
		KeyPrefix:  s.KeyPrefix,
		PrefixKeys: s.PrefixKeys,
	})
	if err != nil {
		return nil, err
	}
	return &handle{name: name, settings: s, provider: p}, nil
}

func buildLocal(name string, spec LocalSpec, driver LocalDriver) (*handle, error) {
	parsed, err := localspec.Parse(spec.Spec)
	if err != nil {
		return nil, err
	}
	p, err := driver(name, parsed)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("local driver returned no provider")
	}
	return &handle{
		name:     name,
		provider: p,
		settings: Settings{Backend: Local, CacheNullValues: true, Spec: spec.Spec},
	}, nil
}

// Lookup returns the handle named name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	h, ok := r.handles[name]
	if !ok {
		return nil, false
	}
	return h, true
}

// MustLookup is like Lookup but panics when name is not registered. Meant for
// wiring code that runs right after Build.
func (r *Registry) MustLookup(name string) Handle {
	h, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("multicache: no cache named %q", name))
	}
	return h
}

// Names returns the registered cache names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int { return len(r.handles) }

// Close releases every backend the registry created. The shared redis client
// stays open; its owner closes it.
func (r *Registry) Close(ctx context.Context) error {
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := r.handles[name].close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
