package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBufferReplaceKeepsLaterRangesValid(t *testing.T) {
	text := "let userName = orderId;"
	b, err := NewBuffer(text, Range{4, 12}, Range{15, 22})
	if err != nil {
		t.Fatal(err)
	}
	sels := b.Selections()
	if diff := cmp.Diff([]string{"userName", "orderId"}, []string{sels[0].Text, sels[1].Text}); diff != "" {
		t.Fatalf("selections mismatch (-want +got):\n%s", diff)
	}

	if err := b.Replace(sels[0].Range, "user_name"); err != nil {
		t.Fatal(err)
	}
	if err := b.Replace(sels[1].Range, "order_id"); err != nil {
		t.Fatal(err)
	}
	if got, want := b.Text(), "let user_name = order_id;"; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}

	sels = b.Selections()
	if sels[0].Text != "user_name" || sels[1].Text != "order_id" {
		t.Errorf("selections after replace = %+v", sels)
	}
}

func TestBufferReplaceOutOfOrder(t *testing.T) {
	b, err := NewBuffer("aa bb cc", Range{0, 2}, Range{6, 8})
	if err != nil {
		t.Fatal(err)
	}
	sels := b.Selections()
	if err := b.Replace(sels[1].Range, "CCCC"); err != nil {
		t.Fatal(err)
	}
	if err := b.Replace(sels[0].Range, "A"); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "A bb CCCC" {
		t.Errorf("Text = %q", got)
	}
}

func TestNewBufferRejectsBadRanges(t *testing.T) {
	if _, err := NewBuffer("abc", Range{2, 5}); err == nil {
		t.Error("expected out of bounds error")
	}
	if _, err := NewBuffer("abcdef", Range{0, 3}, Range{2, 4}); err == nil {
		t.Error("expected overlap error")
	}
}

func TestNewBufferWholeText(t *testing.T) {
	b, err := NewBuffer("userName")
	if err != nil {
		t.Fatal(err)
	}
	if sels := b.Selections(); len(sels) != 1 || sels[0].Text != "userName" {
		t.Errorf("selections = %+v", sels)
	}
}

func TestNewLineBuffer(t *testing.T) {
	b := NewLineBuffer("  userName \n\n用户名\n")
	sels := b.Selections()
	if diff := cmp.Diff([]string{"userName", "用户名"}, []string{sels[0].Text, sels[1].Text}); diff != "" {
		t.Fatalf("selections mismatch (-want +got):\n%s", diff)
	}
	if err := b.Replace(sels[1].Range, "user_name"); err != nil {
		t.Fatal(err)
	}
	if got := b.Text(); got != "  userName \n\nuser_name\n" {
		t.Errorf("Text = %q", got)
	}
}

func TestClipboardSurface(t *testing.T) {
	board := "orderId"
	c := &Clipboard{
		read:  func() (string, error) { return board, nil },
		write: func(s string) error { board = s; return nil },
	}
	sels := c.Selections()
	if len(sels) != 1 || sels[0].Text != "orderId" {
		t.Fatalf("selections = %+v", sels)
	}
	if err := c.Replace(sels[0].Range, "order_id"); err != nil {
		t.Fatal(err)
	}
	if board != "order_id" {
		t.Errorf("clipboard = %q", board)
	}

	c.read = func() (string, error) { return "", errors.New("no clipboard") }
	if sels := c.Selections(); len(sels) != 0 {
		t.Errorf("selections on error = %+v", sels)
	}
}
