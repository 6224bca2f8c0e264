package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/multicache"
	mlog "github.com/unkn0wn-root/multicache/log"
)

type Logger struct{ L *zap.Logger }

var _ multicache.Logger = Logger{}

// New names the logger "multicache".
func New(l *zap.Logger) Logger { return Logger{L: l.Named("multicache")} }

func (z Logger) Debug(msg string, f multicache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f multicache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f multicache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f multicache.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f multicache.Fields) []zap.Field {
	keys := mlog.SortedKeys(f)
	if keys == nil {
		return nil
	}
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
