package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/multicache"
)

const sample = `
multicache:
  enable-remote: true
  enable-local: true
  remote:
    contacts:
      time-to-live: 2h
      key-prefix: foo
    orders:
      time-to-live: 1d
      cache-null-values: false
      use-key-prefix: false
  local:
    friend-list:
      spec: expireAfterAccess=30s,recordStats
`

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnableRemote != multicache.Enabled || cfg.EnableLocal != multicache.Enabled {
		t.Fatalf("flags=%v/%v", cfg.EnableRemote, cfg.EnableLocal)
	}
	want := multicache.RemoteSpec{TimeToLive: 2 * time.Hour, KeyPrefix: "foo", CacheNullValues: true, UseKeyPrefix: true}
	if got := cfg.Remote["contacts"]; got != want {
		t.Fatalf("contacts=%v, want %v", got, want)
	}
	want = multicache.RemoteSpec{TimeToLive: 24 * time.Hour}
	if got := cfg.Remote["orders"]; got != want {
		t.Fatalf("orders=%v, want %v", got, want)
	}
	if got := cfg.Local["friend-list"].Spec; got != "expireAfterAccess=30s,recordStats" {
		t.Fatalf("friend-list spec=%q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadFlags(t *testing.T) {
	cases := map[string]multicache.Flag{
		"":                    multicache.Unset,
		"enable-local: true":  multicache.Enabled,
		"enable-local: false": multicache.Disabled,
		"enable-local: maybe": multicache.Disabled,
	}
	for body, want := range cases {
		cfg, err := Load(strings.NewReader("multicache:\n  " + body + "\n"))
		if err != nil {
			t.Fatalf("%q: %v", body, err)
		}
		if cfg.EnableLocal != want {
			t.Fatalf("%q: flag=%v, want %v", body, cfg.EnableLocal, want)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnableRemote != multicache.Unset || cfg.Remote != nil || cfg.Local != nil {
		t.Fatalf("cfg=%+v, want empty", cfg)
	}
}

func TestLoadDefinedButDisabledSurvivesLoading(t *testing.T) {
	cfg, err := Load(strings.NewReader("multicache:\n  remote:\n    contacts:\n      key-prefix: foo-bar\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, multicache.ErrRemoteCachesDefinedButDisabled) {
		t.Fatalf("Validate err=%v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "multicache:\n  enable-everything: true\n",
		"bad ttl":       "multicache:\n  remote:\n    c:\n      time-to-live: soon\n",
		"negative ttl":  "multicache:\n  remote:\n    c:\n      time-to-live: -5s\n",
		"bad bool":      "multicache:\n  remote:\n    c:\n      use-key-prefix: sometimes\n",
		"unknown field": "multicache:\n  local:\n    c:\n      spec: x\n      size: 3\n",
	}
	for name, body := range cases {
		if _, err := Load(strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multicache.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Remote) != 2 || len(cfg.Local) != 1 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err=%v", err)
	}
}
