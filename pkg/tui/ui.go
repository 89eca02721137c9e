// Package tui is the terminal front end: a bubbletea program that acts as
// the picker list, the retry prompter and the status line at once.
package tui

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/vartrans/pkg/picker"
)

// ErrClosed is returned by list operations once the program has exited.
var ErrClosed = errors.New("tui: program closed")

// UI drives one bubbletea program for the lifetime of a command. It
// implements picker.List, retry.Prompter and status.Sink.
type UI struct {
	prog   *tea.Program
	bridge *bridge
	logger *logrus.Logger

	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
	err       error
	ids       atomic.Uint64
}

// New creates a UI titled title. opts are passed to tea.NewProgram.
func New(title string, logger *logrus.Logger, opts ...tea.ProgramOption) *UI {
	if logger == nil {
		logger = logrus.New()
	}
	b := &bridge{}
	return &UI{
		prog:   tea.NewProgram(newModel(title, b), opts...),
		bridge: b,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start runs the program in the background. It is safe to call more than
// once.
func (u *UI) Start() {
	u.startOnce.Do(func() {
		u.started.Store(true)
		go func() {
			_, err := u.prog.Run()
			if err != nil {
				u.logger.WithError(err).Error("Terminal UI exited with error")
			}
			u.err = err
			close(u.done)
		}()
	})
}

// Stop quits the program and waits for the terminal to be restored.
func (u *UI) Stop() error {
	if !u.started.Load() {
		return nil
	}
	u.prog.Quit()
	<-u.done
	return u.err
}

// Done is closed when the program has exited, including when the user
// pressed ctrl+c.
func (u *UI) Done() <-chan struct{} { return u.done }

func (u *UI) running() bool {
	if !u.started.Load() {
		return false
	}
	select {
	case <-u.done:
		return false
	default:
		return true
	}
}

// SetHandlers implements picker.List.
func (u *UI) SetHandlers(h picker.Handlers) { u.bridge.set(h) }

// SetItems implements picker.List.
func (u *UI) SetItems(items []picker.Option) error {
	if !u.running() {
		return ErrClosed
	}
	u.prog.Send(itemsMsg(append([]picker.Option(nil), items...)))
	return nil
}

// SetActive implements picker.List.
func (u *UI) SetActive(index int) error {
	if !u.running() {
		return ErrClosed
	}
	u.prog.Send(activeMsg(index))
	return nil
}

// Show implements picker.List. Once the program has exited the list can
// no longer be shown, so the hide handler fires asynchronously instead.
func (u *UI) Show() {
	if !u.running() {
		if h := u.bridge.get().Hide; h != nil {
			go h()
		}
		return
	}
	u.prog.Send(showMsg{})
}

// Hide implements picker.List.
func (u *UI) Hide() {
	if !u.running() {
		return
	}
	u.prog.Send(hideMsg{})
}

// Status implements status.Sink.
func (u *UI) Status(msg string) {
	if !u.running() {
		return
	}
	go u.prog.Send(statusMsg(msg))
}

// Progress implements retry.Prompter. ctrl+x cancels the context handed
// to fn. Without a running program fn runs with ctx unchanged.
func (u *UI) Progress(ctx context.Context, title string, fn func(ctx context.Context) string) string {
	if !u.running() {
		return fn(ctx)
	}
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := u.ids.Add(1)
	u.prog.Send(progressStartMsg{id: id, title: title, start: time.Now(), cancel: cancel})
	defer u.prog.Send(progressEndMsg{id: id})

	return fn(pctx)
}

// ConfirmRetry implements retry.Prompter.
func (u *UI) ConfirmRetry(ctx context.Context, message string) bool {
	if !u.running() {
		return false
	}
	reply := make(chan bool, 1)
	u.prog.Send(confirmMsg{message: message, reply: reply})
	select {
	case v := <-reply:
		return v
	case <-ctx.Done():
		return false
	case <-u.done:
		return false
	}
}
