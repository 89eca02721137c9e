package picker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dasmlab/vartrans/pkg/picker"
	"github.com/dasmlab/vartrans/pkg/picker/pickertest"
)

func opts(pairs ...string) []picker.Option {
	out := make([]picker.Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, picker.Option{Label: pairs[i], Description: pairs[i+1]})
	}
	return out
}

func newSession() (*picker.Session, *pickertest.List) {
	logger, _ := test.NewNullLogger()
	list := pickertest.New()
	return picker.NewSession(list, logger), list
}

func waitPick(t *testing.T, p *picker.Pending) picker.Pick {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pick, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("pick not resolved: %v", err)
	}
	return pick
}

func TestOpenAndAccept(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("userName", "camelCase", "translating…", "translation"), false)

	if !s.Visible() || !list.Shown() {
		t.Fatal("list not shown")
	}
	if !list.Accept("userName") {
		t.Fatal("row not found")
	}
	pick := waitPick(t, p)
	if !pick.OK || pick.Label != "userName" {
		t.Errorf("pick = %+v", pick)
	}
	if s.Visible() || list.Shown() {
		t.Error("list still visible after accept")
	}
}

func TestDismissResolvesWithoutPick(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("a", "x"), false)
	list.Dismiss()

	if pick := waitPick(t, p); pick.OK {
		t.Errorf("pick = %+v, want none", pick)
	}
	if s.Visible() {
		t.Error("session still visible")
	}
}

func TestReopenAfterCloseResolvesImmediately(t *testing.T) {
	s, list := newSession()
	s.Open(opts("a", "x"), false)
	list.Dismiss()
	shows := list.Shows

	p := s.Open(opts("b", "y"), true)
	if pick := waitPick(t, p); pick.OK {
		t.Errorf("reopen pick = %+v, want none", pick)
	}
	if s.Visible() {
		t.Error("reopen made the session visible")
	}
	if list.Shows != shows {
		t.Error("reopen showed the list again")
	}
	if diff := cmp.Diff([]string{"a"}, list.Labels()); diff != "" {
		t.Errorf("reopen changed items (-want +got):\n%s", diff)
	}
}

func TestReopenWhileVisibleReplacesPending(t *testing.T) {
	s, list := newSession()
	first := s.Open(opts("a", "x"), false)
	second := s.Open(opts("b", "x"), true)

	if pick := waitPick(t, first); pick.OK {
		t.Errorf("superseded pick = %+v, want none", pick)
	}
	list.Accept("b")
	if pick := waitPick(t, second); !pick.OK || pick.Label != "b" {
		t.Errorf("pick = %+v", pick)
	}
	if list.Registrations != 2 {
		t.Errorf("handlers registered %d times, want once per open", list.Registrations)
	}
}

func TestUpdateItemsKeepsPendingAndList(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("userName", "camelCase", "translating…", "translation"), false)

	s.UpdateItems(opts("userName", "camelCase", "用户名", "translation"))
	select {
	case pick := <-p.Done():
		t.Fatalf("update resolved the pick: %+v", pick)
	default:
	}
	if !list.Shown() {
		t.Fatal("update closed the list")
	}
	if diff := cmp.Diff([]string{"userName", "用户名"}, list.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	list.Accept("用户名")
	if pick := waitPick(t, p); pick.Label != "用户名" {
		t.Errorf("pick = %+v", pick)
	}
}

func TestUpdateAfterDismissIsNoop(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("a", "x"), false)
	list.Dismiss()
	waitPick(t, p)

	if s.Update(p, opts("b", "x")) {
		t.Error("Update reported success on a closed list")
	}
	s.UpdateItems(opts("c", "x"))
	if diff := cmp.Diff([]string{"a"}, list.Labels()); diff != "" {
		t.Errorf("labels changed (-want +got):\n%s", diff)
	}
}

func TestUpdateFromSupersededFlowIsNoop(t *testing.T) {
	s, list := newSession()
	old := s.Open(opts("a", "x"), false)
	s.Open(opts("b", "x"), false)

	if s.Update(old, opts("stale", "x")) {
		t.Error("stale Update applied")
	}
	if diff := cmp.Diff([]string{"b"}, list.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateOnDisposedListIsIgnored(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("a", "x"), false)
	list.Dispose()
	if s.Update(p, opts("b", "x")) {
		t.Error("Update reported success on a disposed list")
	}
}

func TestFocusFollowsDescriptionAcrossUpdates(t *testing.T) {
	s, list := newSession()
	s.Open(opts("a", "camelCase", "b", "snake_case", "c", "translation"), false)
	list.Focus(1)
	if s.Focus() != 1 {
		t.Fatalf("focus = %d, want 1", s.Focus())
	}

	s.UpdateItems(opts("x", "translation", "y", "camelCase", "z", "snake_case"))
	if s.Focus() != 2 {
		t.Errorf("focus = %d, want 2 (snake_case moved)", s.Focus())
	}
	if list.Active() != 2 {
		t.Errorf("list active = %d, want 2", list.Active())
	}
}

func TestFocusClampedWhenListShrinks(t *testing.T) {
	s, list := newSession()
	s.Open(opts("a", "1", "b", "2", "c", "3"), false)
	list.Focus(2)

	s.UpdateItems(opts("x", "9"))
	if s.Focus() != 0 || list.Active() != 0 {
		t.Errorf("focus = %d active = %d, want 0", s.Focus(), list.Active())
	}
}

func TestFocusRememberedAcrossOpens(t *testing.T) {
	s, list := newSession()
	p := s.Open(opts("a", "1", "b", "2", "c", "3"), false)
	list.Focus(0)
	list.Focus(2)
	list.Dismiss()
	waitPick(t, p)

	s.Open(opts("d", "1", "e", "2", "f", "3", "g", "4"), false)
	if list.Active() != 2 {
		t.Errorf("active = %d, want remembered 2", list.Active())
	}

	s.Open(opts("h", "1"), false)
	if list.Active() != 0 {
		t.Errorf("active = %d, want clamped 0", list.Active())
	}
}

func TestFocusOnFirstRowIsRemembered(t *testing.T) {
	s, list := newSession()
	s.Open(opts("a", "1", "b", "2"), false)
	list.Focus(1)
	list.Focus(0)
	if s.Focus() != 0 {
		t.Errorf("focus = %d, want 0", s.Focus())
	}
}
