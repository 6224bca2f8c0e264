package multicache

import (
	"context"
	"errors"
	"testing"

	"github.com/unkn0wn-root/multicache/codec"
)

type contact struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTypedContacts(t *testing.T, hooks Hooks) (*Typed[contact], *memProvider) {
	t.Helper()
	h, p := newLocal(t, hooks)
	return NewTyped[contact](h, codec.JSON[contact]{}, hooks), p
}

func TestTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	in := contact{ID: 1, Name: "alex"}
	if err := tc.Put(ctx, "1", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, ok, err := tc.Get(ctx, "1")
	if err != nil || !ok || out != in {
		t.Fatalf("Get: %+v ok=%v err=%v", out, ok, err)
	}
}

func TestTypedNullReadsAsMiss(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	if err := tc.Handle().Put(ctx, "1", nil); err != nil {
		t.Fatalf("Put(nil): %v", err)
	}
	if _, ok, err := tc.Get(ctx, "1"); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want miss", ok, err)
	}
}

func TestTypedDecodeFailureEvicts(t *testing.T) {
	ctx := context.Background()
	hooks := &recHooks{}
	tc, _ := newTypedContacts(t, hooks)
	if err := tc.Handle().Put(ctx, "1", []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := tc.Get(ctx, "1"); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want miss", ok, err)
	}
	if _, ok, _ := tc.Handle().Get(ctx, "1"); ok {
		t.Fatalf("undecodable entry not evicted")
	}
	if len(hooks.decodeFails) != 1 {
		t.Fatalf("DecodeFailed calls=%v", hooks.decodeFails)
	}
}

func TestCacheableLoadsOnce(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	loads := 0
	load := func(context.Context) (contact, error) {
		loads++
		return contact{ID: 7, Name: "sam"}, nil
	}
	for i := 0; i < 3; i++ {
		c, err := Cacheable(ctx, tc, "7", load)
		if err != nil || c.Name != "sam" {
			t.Fatalf("Cacheable: %+v err=%v", c, err)
		}
	}
	if loads != 1 {
		t.Fatalf("loads=%d, want 1", loads)
	}
}

func TestCacheableLoadErrorNotCached(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	boom := errors.New("boom")
	if _, err := Cacheable(ctx, tc, "7", func(context.Context) (contact, error) {
		return contact{}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if _, ok, _ := tc.Get(ctx, "7"); ok {
		t.Fatalf("failed load was cached")
	}
}

func TestEvictingOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	_ = tc.Put(ctx, "1", contact{ID: 1})

	boom := errors.New("boom")
	if err := Evicting(ctx, tc, "1", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if _, ok, _ := tc.Get(ctx, "1"); !ok {
		t.Fatalf("failed op evicted the entry")
	}
	if err := Evicting(ctx, tc, "1", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Evicting: %v", err)
	}
	if _, ok, _ := tc.Get(ctx, "1"); ok {
		t.Fatalf("entry survived Evicting")
	}
}

func TestEvictingAll(t *testing.T) {
	ctx := context.Background()
	tc, _ := newTypedContacts(t, nil)
	_ = tc.Put(ctx, "1", contact{ID: 1})
	_ = tc.Put(ctx, "2", contact{ID: 2})

	if err := EvictingAll(ctx, tc, func(context.Context) error { return errors.New("no") }); err == nil {
		t.Fatalf("expected op error")
	}
	if _, ok, _ := tc.Get(ctx, "2"); !ok {
		t.Fatalf("failed op cleared the cache")
	}
	if err := EvictingAll(ctx, tc, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("EvictingAll: %v", err)
	}
	for _, k := range []string{"1", "2"} {
		if _, ok, _ := tc.Get(ctx, k); ok {
			t.Fatalf("%s survived EvictingAll", k)
		}
	}
}
