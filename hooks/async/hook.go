// Package asynchook moves Hooks calls off the hot path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{DecodeFailedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	reg, err := multicache.Build(cfg, multicache.Options{Hooks: hooks, ...})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/multicache"
)

type Hooks struct {
	inner multicache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ multicache.Hooks = (*Hooks)(nil)

func New(inner multicache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Hooks must not be
// called after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SetRejected(c, k string) { h.try(func() { h.inner.SetRejected(c, k) }) }
func (h *Hooks) UnprefixedEvictAll(c string) {
	h.try(func() { h.inner.UnprefixedEvictAll(c) })
}
func (h *Hooks) DecodeFailed(c, k string, err error) {
	h.try(func() { h.inner.DecodeFailed(c, k, err) })
}
