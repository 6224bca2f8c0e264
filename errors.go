package multicache

import (
	"errors"
	"fmt"
	"strings"
)

// Consistency failures reported by Validate and Build. Match them with
// errors.Is; the concrete error is always a *ConfigError.
var (
	ErrRemoteCachesEnabledButUndefined = errors.New("remote caches are enabled, but no remote caches are defined")
	ErrRemoteCachesDefinedButDisabled  = errors.New("remote cache properties are configured but remote caches are not enabled")
	ErrLocalCachesEnabledButUndefined  = errors.New("local caches are enabled, but no local caches are defined")
	ErrLocalCachesDefinedButDisabled   = errors.New("local cache properties are configured but local caches are not enabled")
	ErrDuplicateCacheName              = errors.New("cache names are defined with different cache types")
)

var (
	// ErrNullValue is returned by Put when a handle does not cache nil values.
	ErrNullValue = errors.New("multicache: cache does not allow null values")

	// ErrApplicationName is wrapped in a *BackendError when remote caches are
	// configured without Options.ApplicationName.
	ErrApplicationName = errors.New("multicache: application name is required to prefix remote keys")
)

// ConfigError is a configuration consistency failure.
type ConfigError struct {
	Kind  error    // one of the Err*Caches* / ErrDuplicateCacheName sentinels
	Names []string // offending cache names, sorted; may be empty
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrDuplicateCacheName):
		return fmt.Sprintf("multicache: cache name(s) [%s] are defined with different cache types",
			strings.Join(e.Names, ", "))
	case errors.Is(e.Kind, ErrRemoteCachesDefinedButDisabled):
		return fmt.Sprintf("multicache: %v (caches: %s); set enable-remote=true",
			e.Kind, strings.Join(e.Names, ", "))
	case errors.Is(e.Kind, ErrLocalCachesDefinedButDisabled):
		return fmt.Sprintf("multicache: %v (caches: %s); set enable-local=true",
			e.Kind, strings.Join(e.Names, ", "))
	default:
		return "multicache: " + e.Kind.Error()
	}
}

func (e *ConfigError) Unwrap() error { return e.Kind }

// BackendError reports a cache that passed validation but could not be
// constructed by its driver. Err is the driver's error, unchanged.
type BackendError struct {
	Cache   string
	Backend Backend
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("multicache: build %s cache %q: %v", e.Backend, e.Cache, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
