package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/multicache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SetRejectedEvery  uint64
	DecodeFailedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	setRejectedCtr  atomic.Uint64
	decodeFailedCtr atomic.Uint64
}

var _ multicache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SetRejected(cache, key string) {
	if h.l == nil || !sample(h.opts.SetRejectedEvery, &h.setRejectedCtr) {
		return
	}
	h.l.Debug("multicache.set_rejected",
		"cache", cache,
		"key", h.redact(key))
}

func (h *Hooks) DecodeFailed(cache, key string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeFailedCtr) {
		return
	}
	h.l.Warn("multicache.decode_failed",
		"cache", cache,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) UnprefixedEvictAll(cache string) {
	if h.l == nil {
		return
	}
	h.l.Warn("multicache.unprefixed_evict_all",
		"cache", cache,
		"msg", "remote cache without key prefix cleared every visible key")
}
