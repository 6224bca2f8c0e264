package multicache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// Handles call them on hot paths.
type Hooks interface {
	// A local backend refused a write (admission or buffer pressure).
	SetRejected(cache, key string)

	// A stored entry could not be decoded and was evicted on read.
	// The caller sees a miss.
	DecodeFailed(cache, key string, err error)

	// EvictAll on a remote cache without key prefixing; it removes every key
	// the connection can see.
	UnprefixedEvictAll(cache string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SetRejected(string, string)         {}
func (NopHooks) DecodeFailed(string, string, error) {}
func (NopHooks) UnprefixedEvictAll(string)          {}
