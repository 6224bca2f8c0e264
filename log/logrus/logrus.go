package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/multicache"
)

type Logger struct{ E *logrus.Entry }

var _ multicache.Logger = Logger{}

// New tags every entry with component=multicache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "multicache")}
}

func (l Logger) Debug(msg string, f multicache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f multicache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f multicache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f multicache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f multicache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
