// Package editor provides the text surfaces vartrans reads selections from
// and writes replacements to.
package editor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Range is a half-open byte range [Start, End) of a surface's text.
type Range struct {
	Start int
	End   int
}

// Selection is one selected range and the text it covers.
type Selection struct {
	Range Range
	Text  string
}

// Surface is a host text-editing surface.
type Surface interface {
	// Selections returns the current selections in document order.
	Selections() []Selection
	// Replace substitutes text for the selection r, where r is a range
	// previously returned by Selections.
	Replace(r Range, text string) error
}

type edit struct {
	at    int
	end   int
	delta int
}

// Buffer is an in-memory Surface. Ranges returned by Selections stay valid
// after earlier selections are replaced: Replace maps them through the
// edits applied so far, the way an editor tracks multiple cursors.
type Buffer struct {
	mu    sync.Mutex
	text  string
	sels  []Range
	edits []edit
}

// NewBuffer creates a buffer over text. Without ranges the whole text is
// one selection.
func NewBuffer(text string, ranges ...Range) (*Buffer, error) {
	if len(ranges) == 0 {
		ranges = []Range{{0, len(text)}}
	}
	sels := append([]Range(nil), ranges...)
	sort.Slice(sels, func(i, j int) bool { return sels[i].Start < sels[j].Start })
	for i, r := range sels {
		if r.Start < 0 || r.End < r.Start || r.End > len(text) {
			return nil, fmt.Errorf("selection %d: range %d:%d out of bounds", i, r.Start, r.End)
		}
		if i > 0 && r.Start < sels[i-1].End {
			return nil, fmt.Errorf("selection %d: overlaps previous selection", i)
		}
	}
	return &Buffer{text: text, sels: sels}, nil
}

// NewLineBuffer creates a buffer with one selection per non-blank line,
// covering the line without surrounding whitespace.
func NewLineBuffer(text string) *Buffer {
	var sels []Range
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			start := offset + strings.Index(line, trimmed)
			sels = append(sels, Range{start, start + len(trimmed)})
		}
		offset += len(line)
	}
	return &Buffer{text: text, sels: sels}
}

func (b *Buffer) Selections() []Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Selection, 0, len(b.sels))
	for _, r := range b.sels {
		cur := b.mapRange(r)
		out = append(out, Selection{Range: r, Text: b.text[cur.Start:cur.End]})
	}
	return out
}

func (b *Buffer) Replace(r Range, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.mapRange(r)
	if cur.Start < 0 || cur.End > len(b.text) || cur.End < cur.Start {
		return fmt.Errorf("replace %d:%d: range out of bounds", r.Start, r.End)
	}
	b.text = b.text[:cur.Start] + text + b.text[cur.End:]
	b.edits = append(b.edits, edit{at: r.Start, end: r.End, delta: len(text) - (cur.End - cur.Start)})
	return nil
}

// mapRange translates an original range into current offsets.
func (b *Buffer) mapRange(r Range) Range {
	shift, grow := 0, 0
	for _, e := range b.edits {
		switch {
		case e.end <= r.Start && !(e.at == r.Start && e.end == r.End):
			shift += e.delta
		case e.at == r.Start && e.end == r.End:
			grow += e.delta
		}
	}
	return Range{Start: r.Start + shift, End: r.End + shift + grow}
}

// Text returns the current buffer contents.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Clipboard is a Surface over the system clipboard: its single selection is
// the clipboard contents, and a replacement is written back to it.
type Clipboard struct {
	read  func() (string, error)
	write func(string) error
}

// NewClipboard creates a Surface backed by the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{read: clipboard.ReadAll, write: clipboard.WriteAll}
}

func (c *Clipboard) Selections() []Selection {
	text, err := c.read()
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}
	return []Selection{{Range: Range{0, len(text)}, Text: text}}
}

func (c *Clipboard) Replace(r Range, text string) error {
	if err := c.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
