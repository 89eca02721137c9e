// Package status carries short, fire-and-forget messages meant for the user
// (the equivalent of a status bar).
package status

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink accepts status messages. Implementations must not block.
type Sink interface {
	Status(msg string)
}

// Func adapts a function to a Sink.
type Func func(msg string)

// Status calls f(msg).
func (f Func) Status(msg string) { f(msg) }

// Discard drops every message.
var Discard Sink = Func(func(string) {})

// LogSink writes status messages to a logger at info level, prefixed with
// the application name.
type LogSink struct {
	Logger *logrus.Logger
	Prefix string
}

// NewLogSink creates a LogSink. A nil logger is replaced by logrus.New().
func NewLogSink(logger *logrus.Logger, prefix string) *LogSink {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogSink{Logger: logger, Prefix: prefix}
}

func (s *LogSink) Status(msg string) {
	s.Logger.WithField("component", s.Prefix).Info(msg)
}

// Multi fans a message out to several sinks.
func Multi(sinks ...Sink) Sink {
	return Func(func(msg string) {
		for _, s := range sinks {
			if s != nil {
				s.Status(msg)
			}
		}
	})
}

// Recorder keeps every message it receives. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Status(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}
