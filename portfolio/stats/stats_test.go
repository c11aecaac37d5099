package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/teletest"
)

type fakeSource struct {
	sum   Summary
	err   error
	since []time.Time
}

func (f *fakeSource) Summary(_ context.Context, since time.Time) (Summary, error) {
	f.since = append(f.since, since)
	s := f.sum
	s.Since = since
	return s, f.err
}

var fixedNow = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

func newTestHandler(src Source, days int) *Handler {
	h := NewHandler(src, days)
	h.now = func() time.Time { return fixedNow }
	return h
}

func sampleSummary() Summary {
	return Summary{
		Panels: []PanelViews{
			{Panel: "home", Views: 10, Users: 4},
			{Panel: "about_me", Views: 3, Users: 2},
		},
		Users: 5,
	}
}

func TestRender(t *testing.T) {
	sum := sampleSummary()
	sum.Since = fixedNow.Add(-7 * 24 * time.Hour)
	got := Render(sum, 7)
	for _, want := range []string{
		"*Panel views, last 7 days*",
		"since 2024-05-24 12:00 UTC",
		"home: 10 views, 4 users",
		`about\_me: 3 views, 2 users`,
		"*Total:* 13 views, 5 users",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(Summary{Since: fixedNow}, 30); !strings.HasSuffix(got, "No views yet.") {
		t.Fatalf("got %q", got)
	}
}

func TestCommandUsesArgumentWindow(t *testing.T) {
	src := &fakeSource{sum: sampleSummary()}
	h := newTestHandler(src, 0)

	c := teletest.NewMessage(1, 1, "/stats 7")
	if err := h.Command(c); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if want := fixedNow.Add(-7 * 24 * time.Hour); !src.since[0].Equal(want) {
		t.Fatalf("since = %v, want %v", src.since[0], want)
	}
	sent := c.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Text(), "last 7 days") {
		t.Fatalf("sent = %+v", sent)
	}
	refresh := sent[0].Markup().InlineKeyboard[1][0]
	if refresh.Unique != RefreshKey || refresh.Data != "7" {
		t.Fatalf("refresh button = %+v", refresh)
	}
}

func TestCommandDefaultsWindow(t *testing.T) {
	src := &fakeSource{}
	h := newTestHandler(src, 0)
	if err := h.Command(teletest.NewMessage(1, 1, "/stats abc")); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if want := fixedNow.Add(-DefaultWindowDays * 24 * time.Hour); !src.since[0].Equal(want) {
		t.Fatalf("since = %v, want %v", src.since[0], want)
	}
}

func TestCommandSourceError(t *testing.T) {
	h := newTestHandler(&fakeSource{err: errors.New("db down")}, 30)
	c := teletest.NewMessage(1, 1, "/stats")
	if err := h.Command(c); err == nil {
		t.Fatal("expected error")
	}
	if len(c.Sent()) != 0 {
		t.Fatal("nothing should be sent on failure")
	}
}

func TestRefreshEditsInPlace(t *testing.T) {
	src := &fakeSource{sum: sampleSummary()}
	h := newTestHandler(src, 30)

	c := teletest.NewCallback(1, 1, "\f"+RefreshKey+"|90", false)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(c.Responds()) != 1 {
		t.Fatalf("responds = %d", len(c.Responds()))
	}
	edits := c.Edits()
	if len(edits) != 1 || !strings.Contains(edits[0].Text(), "last 90 days") {
		t.Fatalf("edits = %+v", edits)
	}
}

func TestRegisterGuardsRefresh(t *testing.T) {
	reg := tg.NewRegistry()
	h := newTestHandler(&fakeSource{}, 30)
	if err := h.Register(reg, 100); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, cmd, ok := reg.LookupCommand("/stats"); !ok || !cmd.AdminOnly || cmd.Listed() {
		t.Fatalf("stats command = %+v, %v", cmd, ok)
	}

	cb, ok := reg.GetCallback(RefreshKey)
	if !ok {
		t.Fatal("refresh callback not registered")
	}
	stranger := teletest.NewCallback(1, 5, "\f"+RefreshKey+"|7", false)
	if err := cb(stranger); err != nil {
		t.Fatalf("stranger: %v", err)
	}
	if len(stranger.Edits()) != 0 {
		t.Fatal("non-admin must not see stats")
	}
	if r := stranger.Responds(); len(r) != 1 || r[0] == nil || r[0].Text != "Not allowed" {
		t.Fatalf("responds = %+v", r)
	}

	admin := teletest.NewCallback(2, 100, "\f"+RefreshKey+"|7", false)
	if err := cb(admin); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if len(admin.Edits()) != 1 {
		t.Fatal("admin should get the summary")
	}
}

func TestClampDays(t *testing.T) {
	cases := map[int]int{-1: DefaultWindowDays, 0: DefaultWindowDays, 7: 7, 365: 365, 1000: 365}
	for in, want := range cases {
		if got := clampDays(in); got != want {
			t.Errorf("clampDays(%d) = %d, want %d", in, got, want)
		}
	}
}
