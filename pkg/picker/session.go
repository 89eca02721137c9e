// Package picker keeps one re-openable selection list per process. The list
// can be shown at once with placeholder content and have its content
// replaced later without closing it or losing the user's cursor.
package picker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Option is one row of the list.
type Option struct {
	// Label is the candidate replacement text.
	Label string
	// Description tags the row (a case style, or "translation"). Focus
	// memory follows the tag, not the row position.
	Description string
}

// Handlers are the callbacks a List reports user actions through.
type Handlers struct {
	Accept func(Option)
	Hide   func()
	Active func(Option)
}

// List is the host's selectable list widget.
//
// SetItems, SetActive, SetHandlers and Show must not invoke handlers
// synchronously. Hide may. SetItems returns an error once the widget has
// been disposed.
type List interface {
	SetHandlers(h Handlers)
	SetItems(items []Option) error
	SetActive(index int) error
	Show()
	Hide()
}

// Pick is the outcome of an open list: the accepted option, or OK=false
// when the list was dismissed or superseded.
type Pick struct {
	Option
	OK bool
}

// Pending resolves exactly once with the user's pick.
type Pending struct {
	gen  uint64
	once sync.Once
	ch   chan Pick
}

func newPending(gen uint64) *Pending {
	return &Pending{gen: gen, ch: make(chan Pick, 1)}
}

func (p *Pending) resolve(pick Pick) {
	p.once.Do(func() {
		p.ch <- pick
		close(p.ch)
	})
}

// Done delivers the pick once and is then closed.
func (p *Pending) Done() <-chan Pick { return p.ch }

// Wait blocks until the pick is known or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Pick, error) {
	select {
	case pick := <-p.ch:
		return pick, nil
	case <-ctx.Done():
		return Pick{}, ctx.Err()
	}
}

// Session is the process-wide list state. Construct one at startup and
// share it; it is safe for concurrent use.
type Session struct {
	list   List
	logger *logrus.Logger

	// ops orders calls into the list. Handlers never take it.
	ops sync.Mutex

	mu      sync.Mutex
	options []Option
	focus   int
	visible bool
	gen     uint64
	pending *Pending
}

// NewSession wraps list.
func NewSession(list List, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{list: list, logger: logger}
}

// Open shows options and returns the Pending for the user's pick.
//
// With reopen set and the list already dismissed, Open resolves at once
// with no pick and leaves the list closed, so a late asynchronous update
// cannot resurrect it. Otherwise the visible list is reconfigured in place;
// a Pending still outstanding from an earlier Open is resolved with no pick.
func (s *Session) Open(options []Option, reopen bool) *Pending {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.Lock()
	if reopen && !s.visible {
		s.mu.Unlock()
		p := newPending(0)
		p.resolve(Pick{})
		return p
	}
	prev := s.pending
	s.gen++
	p := newPending(s.gen)
	s.pending = p
	s.options = append([]Option(nil), options...)
	s.focus = clamp(s.focus, len(options))
	focus := s.focus
	s.visible = true
	s.mu.Unlock()

	if prev != nil {
		prev.resolve(Pick{})
	}

	s.list.SetHandlers(Handlers{Accept: s.onAccept, Hide: s.onHide, Active: s.onActive})
	if err := s.list.SetItems(options); err != nil {
		s.logger.WithError(err).Warn("Picker list rejected items")
	}
	_ = s.list.SetActive(focus)
	s.list.Show()

	s.logger.WithFields(logrus.Fields{
		"options":    len(options),
		"focus":      focus,
		"generation": p.gen,
		"superseded": prev != nil,
	}).Debug("Picker opened")
	return p
}

// UpdateItems replaces the options of the visible list without closing it
// or resolving the pending pick. It is a no-op when the list is not visible
// or has been disposed.
func (s *Session) UpdateItems(options []Option) {
	s.update(0, false, options)
}

// Update is UpdateItems guarded by the Pending returned from Open: it does
// nothing once p has been superseded by a newer Open. It reports whether
// the list was updated.
func (s *Session) Update(p *Pending, options []Option) bool {
	return s.update(p.gen, true, options)
}

func (s *Session) update(gen uint64, checkGen bool, options []Option) bool {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.Lock()
	if !s.visible || (checkGen && gen != s.gen) {
		s.mu.Unlock()
		s.logger.WithField("generation", gen).Debug("Ignoring stale picker update")
		return false
	}
	focus := s.focus
	if focus < len(s.options) {
		if idx := indexOf(options, s.options[focus].Description); idx >= 0 {
			focus = idx
		}
	}
	s.focus = clamp(focus, len(options))
	focus = s.focus
	s.options = append([]Option(nil), options...)
	s.mu.Unlock()

	if err := s.list.SetItems(options); err != nil {
		s.logger.WithError(err).Debug("Picker list disposed, update dropped")
		return false
	}
	_ = s.list.SetActive(focus)
	return true
}

func (s *Session) onAccept(opt Option) {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.visible = false
	s.mu.Unlock()

	if p != nil {
		p.resolve(Pick{Option: opt, OK: true})
	}
	s.list.Hide()
}

func (s *Session) onHide() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.visible = false
	s.mu.Unlock()

	if p != nil {
		p.resolve(Pick{})
	}
}

func (s *Session) onActive(opt Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := indexOf(s.options, opt.Description); idx >= 0 {
		s.focus = idx
	}
}

// Visible reports whether the list is showing.
func (s *Session) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Focus returns the remembered cursor position.
func (s *Session) Focus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// Options returns a copy of the current options.
func (s *Session) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Option(nil), s.options...)
}

func indexOf(options []Option, description string) int {
	for i, o := range options {
		if o.Description == description {
			return i
		}
	}
	return -1
}

func clamp(i, n int) int {
	switch {
	case n == 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
