// Package localspec parses the compact directive strings that configure local
// caches, e.g.
//
//	maximumSize=500,expireAfterAccess=30s,recordStats
//
// Directives are comma separated. Key directives take a value after '=';
// flag directives take none.
//
//	initialCapacity=<int>     sizing hint
//	maximumSize=<int>         entry count bound
//	maximumWeight=<int>       byte bound (entries weigh their encoded size)
//	expireAfterAccess=<dur>   idle expiry
//	expireAfterWrite=<dur>    age expiry
//	refreshAfterWrite=<dur>   asynchronous refresh (needs a loading cache)
//	weakKeys, weakValues, softValues
//	recordStats
//
// Durations are a non-negative integer followed by one of d, h, m, s.
package localspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unset marks a numeric or duration directive that was not given.
const Unset = -1

// Strength is the reference strength requested for keys or values.
type Strength int

const (
	Strong Strength = iota
	Weak
	Soft
)

// Spec is a parsed directive string. Numeric and duration fields hold Unset
// when absent.
type Spec struct {
	InitialCapacity   int64
	MaximumSize       int64
	MaximumWeight     int64
	ExpireAfterAccess time.Duration
	ExpireAfterWrite  time.Duration
	RefreshAfterWrite time.Duration
	KeyStrength       Strength
	ValueStrength     Strength
	RecordStats       bool

	raw string
}

// SyntaxError reports a malformed directive.
type SyntaxError struct {
	Option string
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Option == "" {
		return "localspec: " + e.Msg
	}
	return fmt.Sprintf("localspec: %q: %s", e.Option, e.Msg)
}

// ErrDuration is wrapped by ParseDuration failures.
var ErrDuration = errors.New("invalid duration")

func newSpec(raw string) Spec {
	return Spec{
		InitialCapacity:   Unset,
		MaximumSize:       Unset,
		MaximumWeight:     Unset,
		ExpireAfterAccess: Unset,
		ExpireAfterWrite:  Unset,
		RefreshAfterWrite: Unset,
		raw:               raw,
	}
}

// Parse parses a directive string. The empty string is a valid, empty spec.
func Parse(s string) (Spec, error) {
	spec := newSpec(s)
	seen := make(map[string]bool)

	for _, option := range strings.Split(s, ",") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		parts := strings.Split(option, "=")
		if len(parts) > 2 {
			return Spec{}, &SyntaxError{Option: option, Msg: "key-value pair with more than one equals sign"}
		}
		key := strings.TrimSpace(parts[0])
		value, hasValue := "", len(parts) == 2
		if hasValue {
			value = strings.TrimSpace(parts[1])
		}
		if seen[key] {
			return Spec{}, &SyntaxError{Option: option, Msg: key + " was already set"}
		}
		seen[key] = true

		if err := spec.apply(key, value, hasValue); err != nil {
			return Spec{}, &SyntaxError{Option: option, Msg: err.Error()}
		}
	}

	if spec.MaximumSize != Unset && spec.MaximumWeight != Unset {
		return Spec{}, &SyntaxError{Msg: "maximumSize and maximumWeight cannot be combined"}
	}
	return spec, nil
}

func (s *Spec) apply(key, value string, hasValue bool) error {
	switch key {
	case "initialCapacity":
		return intValue(&s.InitialCapacity, value, hasValue)
	case "maximumSize":
		return intValue(&s.MaximumSize, value, hasValue)
	case "maximumWeight":
		return intValue(&s.MaximumWeight, value, hasValue)
	case "expireAfterAccess":
		return durationValue(&s.ExpireAfterAccess, value, hasValue)
	case "expireAfterWrite":
		return durationValue(&s.ExpireAfterWrite, value, hasValue)
	case "refreshAfterWrite":
		return durationValue(&s.RefreshAfterWrite, value, hasValue)
	case "weakKeys":
		s.KeyStrength = Weak
		return noValue(hasValue)
	case "weakValues", "softValues":
		if s.ValueStrength != Strong {
			return errors.New("value strength was already set")
		}
		s.ValueStrength = Weak
		if key == "softValues" {
			s.ValueStrength = Soft
		}
		return noValue(hasValue)
	case "recordStats":
		s.RecordStats = true
		return noValue(hasValue)
	default:
		return errors.New("unknown directive")
	}
}

func noValue(hasValue bool) error {
	if hasValue {
		return errors.New("directive does not take a value")
	}
	return nil
}

func intValue(dst *int64, value string, hasValue bool) error {
	if !hasValue || value == "" {
		return errors.New("value required")
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", value)
	}
	if n < 0 {
		return fmt.Errorf("must not be negative: %d", n)
	}
	*dst = n
	return nil
}

func durationValue(dst *time.Duration, value string, hasValue bool) error {
	if !hasValue || value == "" {
		return errors.New("value required")
	}
	d, err := ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// ParseDuration parses "<int><unit>" with unit one of d, h, m, s
// (case-insensitive), e.g. "30s" or "1d".
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrDuration, s)
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'h', 'H':
		unit = time.Hour
	case 'm', 'M':
		unit = time.Minute
	case 's', 'S':
		unit = time.Second
	default:
		return 0, fmt.Errorf("%w: %q has no d/h/m/s unit", ErrDuration, s)
	}
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrDuration, s)
	}
	if n > int64((1<<63-1)/unit) {
		return 0, fmt.Errorf("%w: %q overflows", ErrDuration, s)
	}
	return time.Duration(n) * unit, nil
}

// Raw returns the directive text Parse was given.
func (s Spec) Raw() string { return s.raw }

func (s Spec) String() string { return s.raw }
