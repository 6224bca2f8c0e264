// Package multicache builds a registry of named caches, each served by either
// a local in-process backend or a remote redis backend, from one declarative
// Config.
//
// Components:
//   - Config: per-backend enable flags and cache definitions (see settings for
//     a YAML loader).
//   - Build: validates the Config and constructs one Handle per cache.
//   - Registry: read-only name -> Handle lookup.
//   - Provider: byte store per cache (provider/ristretto, provider/bigcache,
//     provider/redis).
//   - Typed[V]: codec-backed view of a Handle with Cacheable / Evicting
//     wrap-call helpers.
//
// Remote keys:
//
//	<app>-<keyPrefix>::<key>   when UseKeyPrefix and KeyPrefix are set
//	<app>-<cache>::<key>       when UseKeyPrefix is set without KeyPrefix
//	<key>                      when UseKeyPrefix is false
//
// Read-through pattern:
//
//	contacts := multicache.NewTyped(reg.MustLookup("contacts"), codec.JSON[Contact]{}, nil)
//	c, err := multicache.Cacheable(ctx, contacts, id, func(ctx context.Context) (Contact, error) {
//		return repo.FindByID(ctx, id)
//	})
package multicache
