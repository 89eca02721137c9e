// Package pickertest provides an in-memory picker.List driven by tests.
package pickertest

import (
	"errors"
	"sync"

	"github.com/dasmlab/vartrans/pkg/picker"
)

// ErrDisposed is returned by SetItems after Dispose.
var ErrDisposed = errors.New("list disposed")

// List records what the session shows and lets a test play the user.
type List struct {
	mu       sync.Mutex
	handlers picker.Handlers
	items    []picker.Option
	active   int
	shown    bool
	disposed bool

	// Shows and Registrations count Show and SetHandlers calls.
	Shows         int
	Registrations int
	// Updated is signalled (non-blocking) after every SetItems.
	Updated chan struct{}
}

// New creates an empty list.
func New() *List {
	return &List{Updated: make(chan struct{}, 16)}
}

func (l *List) SetHandlers(h picker.Handlers) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = h
	l.Registrations++
}

func (l *List) SetItems(items []picker.Option) error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return ErrDisposed
	}
	l.items = append([]picker.Option(nil), items...)
	l.mu.Unlock()

	select {
	case l.Updated <- struct{}{}:
	default:
	}
	return nil
}

func (l *List) SetActive(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = index
	return nil
}

func (l *List) Show() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shown = true
	l.Shows++
}

func (l *List) Hide() {
	l.mu.Lock()
	wasShown := l.shown
	l.shown = false
	h := l.handlers.Hide
	l.mu.Unlock()
	if wasShown && h != nil {
		h()
	}
}

// Items returns what is currently displayed.
func (l *List) Items() []picker.Option {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]picker.Option(nil), l.items...)
}

// Labels returns the displayed labels.
func (l *List) Labels() []string {
	items := l.Items()
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// Active returns the highlighted row.
func (l *List) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Shown reports whether the list is on screen.
func (l *List) Shown() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shown
}

// Focus moves the cursor to row i as the user would.
func (l *List) Focus(i int) {
	l.mu.Lock()
	l.active = i
	opt := l.items[i]
	h := l.handlers.Active
	l.mu.Unlock()
	if h != nil {
		h(opt)
	}
}

// Accept confirms the row whose label is label. It reports false when no
// such row is displayed.
func (l *List) Accept(label string) bool {
	l.mu.Lock()
	var (
		opt   picker.Option
		found bool
	)
	for _, it := range l.items {
		if it.Label == label {
			opt, found = it, true
			break
		}
	}
	h := l.handlers.Accept
	l.mu.Unlock()
	if !found || h == nil {
		return false
	}
	h(opt)
	return true
}

// Dismiss closes the list as the user would (Escape).
func (l *List) Dismiss() {
	l.Hide()
}

// Dispose makes every later SetItems fail.
func (l *List) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposed = true
}
