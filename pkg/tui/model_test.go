package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dasmlab/vartrans/pkg/picker"
)

type recorded struct {
	accepted []picker.Option
	active   []picker.Option
	hides    int
}

func newRecordingModel() (model, *recorded) {
	rec := &recorded{}
	b := &bridge{}
	b.set(picker.Handlers{
		Accept: func(o picker.Option) { rec.accepted = append(rec.accepted, o) },
		Hide:   func() { rec.hides++ },
		Active: func(o picker.Option) { rec.active = append(rec.active, o) },
	})
	return newModel("vartrans", b), rec
}

func step(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd != nil {
		cmd()
	}
	return next.(model)
}

var sample = []picker.Option{
	{Label: "userName", Description: "camelCase"},
	{Label: "UserName", Description: "PascalCase"},
	{Label: "translating…", Description: "translation"},
}

func TestModelMoveAndAccept(t *testing.T) {
	m, rec := newRecordingModel()
	m = step(t, m, itemsMsg(sample))
	m = step(t, m, showMsg{})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})

	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	if len(rec.active) != 1 || rec.active[0].Description != "PascalCase" {
		t.Fatalf("active = %+v", rec.active)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.visible {
		t.Error("list still visible after enter")
	}
	if len(rec.accepted) != 1 || rec.accepted[0].Label != "UserName" {
		t.Errorf("accepted = %+v", rec.accepted)
	}

	// The session hides the list after accepting; that must not report a
	// second dismissal.
	step(t, m, hideMsg{})
	if rec.hides != 0 {
		t.Errorf("hides = %d, want 0", rec.hides)
	}
}

func TestModelEscapeHides(t *testing.T) {
	m, rec := newRecordingModel()
	m = step(t, m, itemsMsg(sample))
	m = step(t, m, showMsg{})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.visible || rec.hides != 1 {
		t.Errorf("visible = %v, hides = %d", m.visible, rec.hides)
	}
	if len(rec.accepted) != 0 {
		t.Errorf("accepted = %+v", rec.accepted)
	}
}

func TestModelCursorClampsOnShorterItems(t *testing.T) {
	m, _ := newRecordingModel()
	m = step(t, m, itemsMsg(sample))
	m = step(t, m, activeMsg(2))
	m = step(t, m, itemsMsg(sample[:1]))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestModelConfirm(t *testing.T) {
	m, _ := newRecordingModel()

	reply := make(chan bool, 1)
	m = step(t, m, confirmMsg{message: "translation failed, retry?", reply: reply})
	if !strings.Contains(m.View(), "translation failed, retry?") {
		t.Errorf("view does not show prompt:\n%s", m.View())
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if got := <-reply; !got {
		t.Error("r should confirm")
	}
	if m.confirm != nil {
		t.Error("prompt still open")
	}

	reply = make(chan bool, 1)
	m = step(t, m, confirmMsg{message: "again?", reply: reply})
	step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if got := <-reply; got {
		t.Error("c should decline")
	}
}

func TestModelProgressCancel(t *testing.T) {
	m, _ := newRecordingModel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	next, _ := m.Update(progressStartMsg{id: 1, title: "translating", start: start, cancel: cancel})
	m = next.(model)
	next, _ = m.Update(tickMsg(start.Add(1500 * time.Millisecond)))
	m = next.(model)
	if !strings.Contains(m.View(), "1.5s") {
		t.Errorf("view does not show elapsed time:\n%s", m.View())
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if ctx.Err() == nil {
		t.Error("ctrl+x did not cancel progress")
	}

	m = step(t, m, progressEndMsg{id: 2})
	if m.progress == nil {
		t.Error("progress cleared by foreign id")
	}
	m = step(t, m, progressEndMsg{id: 1})
	if m.progress != nil {
		t.Error("progress not cleared")
	}
}

func TestUIWithSession(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var out bytes.Buffer
	ui := New("vartrans", logger, tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	ui.Start()
	defer ui.Stop()

	s := picker.NewSession(ui, logger)
	p := s.Open(sample, false)
	ui.prog.Send(tea.KeyMsg{Type: tea.KeyDown})
	ui.prog.Send(tea.KeyMsg{Type: tea.KeyEnter})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pick, err := p.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !pick.OK || pick.Label != "UserName" {
		t.Errorf("pick = %+v", pick)
	}
}

func TestUIAfterStop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ui := New("vartrans", logger, tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}), tea.WithoutSignalHandler())
	ui.Start()
	if err := ui.Stop(); err != nil {
		t.Fatal(err)
	}

	if err := ui.SetItems(sample); err != ErrClosed {
		t.Errorf("SetItems err = %v, want ErrClosed", err)
	}
	if ui.ConfirmRetry(context.Background(), "retry?") {
		t.Error("ConfirmRetry after stop should be false")
	}
	got := ui.Progress(context.Background(), "translating", func(context.Context) string { return "ok" })
	if got != "ok" {
		t.Errorf("Progress = %q", got)
	}

	s := picker.NewSession(ui, logger)
	p := s.Open(sample, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pick, err := p.Wait(ctx)
	if err != nil || pick.OK {
		t.Errorf("pick = %+v, err = %v", pick, err)
	}
}
