// Package log holds adapters from multicache.Logger to common logging stacks.
// Fields are emitted in key order so log lines are stable.
package log

import (
	"sort"

	"github.com/unkn0wn-root/multicache"
)

// SortedKeys returns the keys of f in ascending order.
func SortedKeys(f multicache.Fields) []string {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
