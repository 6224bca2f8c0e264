// Package settings loads a multicache.Config from YAML.
//
//	multicache:
//	  enable-remote: true
//	  enable-local: true
//	  remote:
//	    contacts:
//	      time-to-live: 2h
//	      key-prefix: foo
//	  local:
//	    friend-list:
//	      spec: expireAfterAccess=30s,recordStats
//
// Absent remote keys take the defaults of multicache.DefaultRemoteSpec.
// Durations accept Go syntax (90s, 1h30m) and the day suffix (1d).
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/multicache"
	"github.com/unkn0wn-root/multicache/localspec"
)

type document struct {
	Multicache section `yaml:"multicache"`
}

type section struct {
	// Flags stay text so that an absent key is distinguishable from false.
	EnableRemote string                 `yaml:"enable-remote"`
	EnableLocal  string                 `yaml:"enable-local"`
	Remote       map[string]remoteEntry `yaml:"remote"`
	Local        map[string]localEntry  `yaml:"local"`
}

type remoteEntry struct {
	TimeToLive      string `yaml:"time-to-live"`
	CacheNullValues *bool  `yaml:"cache-null-values"`
	KeyPrefix       string `yaml:"key-prefix"`
	UseKeyPrefix    *bool  `yaml:"use-key-prefix"`
}

type localEntry struct {
	Spec string `yaml:"spec"`
}

// LoadFile reads the Config from the YAML file at path.
func LoadFile(path string) (multicache.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return multicache.Config{}, err
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		return multicache.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes the Config from r. Unknown keys are errors; an empty document
// yields an empty Config.
func Load(r io.Reader) (multicache.Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return multicache.Config{}, fmt.Errorf("settings: %w", err)
	}
	return doc.Multicache.config()
}

func (s section) config() (multicache.Config, error) {
	cfg := multicache.Config{
		EnableRemote: multicache.ParseFlag(s.EnableRemote),
		EnableLocal:  multicache.ParseFlag(s.EnableLocal),
	}
	if len(s.Remote) > 0 {
		cfg.Remote = make(map[string]multicache.RemoteSpec, len(s.Remote))
		for name, e := range s.Remote {
			spec, err := e.spec()
			if err != nil {
				return multicache.Config{}, fmt.Errorf("settings: remote.%s: %w", name, err)
			}
			cfg.Remote[name] = spec
		}
	}
	if len(s.Local) > 0 {
		cfg.Local = make(map[string]multicache.LocalSpec, len(s.Local))
		for name, e := range s.Local {
			cfg.Local[name] = multicache.LocalSpec{Spec: e.Spec}
		}
	}
	return cfg, nil
}

func (e remoteEntry) spec() (multicache.RemoteSpec, error) {
	spec := multicache.DefaultRemoteSpec()
	ttl, err := parseDuration(e.TimeToLive)
	if err != nil {
		return spec, fmt.Errorf("time-to-live: %w", err)
	}
	spec.TimeToLive = ttl
	spec.KeyPrefix = e.KeyPrefix
	if e.CacheNullValues != nil {
		spec.CacheNullValues = *e.CacheNullValues
	}
	if e.UseKeyPrefix != nil {
		spec.UseKeyPrefix = *e.UseKeyPrefix
	}
	return spec, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		if d, err = localspec.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("%q: %w", s, err)
		}
	}
	if d < 0 {
		return 0, fmt.Errorf("%q: must not be negative", s)
	}
	return d, nil
}
