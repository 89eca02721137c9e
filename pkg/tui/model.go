package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dasmlab/vartrans/pkg/picker"
)

// Messages sent into the program by the UI methods.
type (
	itemsMsg  []picker.Option
	activeMsg int
	showMsg   struct{}
	hideMsg   struct{}
	statusMsg string
	tickMsg   time.Time

	progressStartMsg struct {
		id     uint64
		title  string
		start  time.Time
		cancel context.CancelFunc
	}
	progressEndMsg struct{ id uint64 }

	confirmMsg struct {
		message string
		reply   chan<- bool
	}
)

const tickInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	labelStyle    = lipgloss.NewStyle()
	activeStyle   = lipgloss.NewStyle().Bold(true)
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// bridge holds the handlers registered by the picker session. The model
// only ever calls them from commands, never from Update itself.
type bridge struct {
	mu       sync.Mutex
	handlers picker.Handlers
}

func (b *bridge) set(h picker.Handlers) {
	b.mu.Lock()
	b.handlers = h
	b.mu.Unlock()
}

func (b *bridge) get() picker.Handlers {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlers
}

func (b *bridge) acceptCmd(opt picker.Option) tea.Cmd {
	return func() tea.Msg {
		if h := b.get().Accept; h != nil {
			h(opt)
		}
		return nil
	}
}

func (b *bridge) hideCmd() tea.Cmd {
	return func() tea.Msg {
		if h := b.get().Hide; h != nil {
			h()
		}
		return nil
	}
}

func (b *bridge) activeCmd(opt picker.Option) tea.Cmd {
	return func() tea.Msg {
		if h := b.get().Active; h != nil {
			h(opt)
		}
		return nil
	}
}

type progressState struct {
	id     uint64
	title  string
	start  time.Time
	cancel context.CancelFunc
}

type confirmState struct {
	message string
	reply   chan<- bool
}

// model is the bubbletea model behind UI.
type model struct {
	title   string
	bridge  *bridge
	items   []picker.Option
	cursor  int
	visible bool

	progress *progressState
	confirm  *confirmState
	status   string
	now      time.Time
}

func newModel(title string, b *bridge) model {
	return model{title: title, bridge: b}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsMsg:
		m.items = []picker.Option(msg)
		m.cursor = clampCursor(m.cursor, len(m.items))
		return m, nil

	case activeMsg:
		m.cursor = clampCursor(int(msg), len(m.items))
		return m, nil

	case showMsg:
		m.visible = true
		return m, nil

	case hideMsg:
		if !m.visible {
			return m, nil
		}
		m.visible = false
		return m, m.bridge.hideCmd()

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case progressStartMsg:
		m.progress = &progressState{id: msg.id, title: msg.title, start: msg.start, cancel: msg.cancel}
		m.now = msg.start
		return m, tick()

	case progressEndMsg:
		if m.progress != nil && m.progress.id == msg.id {
			m.progress = nil
		}
		return m, nil

	case tickMsg:
		if m.progress == nil {
			return m, nil
		}
		m.now = time.Time(msg)
		return m, tick()

	case confirmMsg:
		m.answer(false)
		m.confirm = &confirmState{message: msg.message, reply: msg.reply}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.answer(false)
		if m.progress != nil {
			m.progress.cancel()
		}
		if m.visible {
			m.visible = false
			return m, tea.Sequence(m.bridge.hideCmd(), tea.Quit)
		}
		return m, tea.Quit
	}

	if m.confirm != nil {
		switch key {
		case "r", "y", "enter":
			m.answer(true)
		case "c", "n", "esc":
			m.answer(false)
		}
		return m, nil
	}

	if key == "ctrl+x" && m.progress != nil {
		m.progress.cancel()
		return m, nil
	}

	if !m.visible || len(m.items) == 0 {
		if m.visible && key == "esc" {
			m.visible = false
			return m, m.bridge.hideCmd()
		}
		return m, nil
	}

	switch key {
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
			return m, m.bridge.activeCmd(m.items[m.cursor])
		}
	case "down", "j", "tab":
		if m.cursor < len(m.items)-1 {
			m.cursor++
			return m, m.bridge.activeCmd(m.items[m.cursor])
		}
	case "enter":
		m.visible = false
		return m, m.bridge.acceptCmd(m.items[m.cursor])
	case "esc", "q":
		m.visible = false
		return m, m.bridge.hideCmd()
	}
	return m, nil
}

// answer replies to an outstanding confirmation, if any.
func (m *model) answer(v bool) {
	if m.confirm == nil {
		return
	}
	m.confirm.reply <- v
	m.confirm = nil
}

func (m model) View() string {
	var s strings.Builder

	if m.visible {
		s.WriteString(titleStyle.Render(m.title))
		s.WriteString("\n")
		for i, opt := range m.items {
			cursor, label := "  ", labelStyle.Render(opt.Label)
			if i == m.cursor {
				cursor, label = cursorStyle.Render("› "), activeStyle.Render(opt.Label)
			}
			s.WriteString(cursor + label + "  " + descStyle.Render(opt.Description) + "\n")
		}
	}

	if m.progress != nil {
		elapsed := m.now.Sub(m.progress.start)
		if elapsed < 0 {
			elapsed = 0
		}
		frame := spinnerFrames[int(elapsed/tickInterval)%len(spinnerFrames)]
		s.WriteString(progressStyle.Render(fmt.Sprintf("%s %s %.1fs", frame, m.progress.title, elapsed.Seconds())))
		s.WriteString(helpStyle.Render("  ctrl+x cancel"))
		s.WriteString("\n")
	}

	if m.confirm != nil {
		s.WriteString(promptStyle.Render(m.confirm.message))
		s.WriteString(helpStyle.Render("  [r]etry / [c]ancel"))
		s.WriteString("\n")
	}

	if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}

	if m.visible {
		s.WriteString(helpStyle.Render("↑/↓ move • enter pick • esc close"))
		s.WriteString("\n")
	}
	return s.String()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func clampCursor(i, n int) int {
	switch {
	case n == 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
