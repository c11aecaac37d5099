package nav

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/teletest"
	"github.com/m3rciful/folio/portfolio/menu"

	tele "gopkg.in/telebot.v4"
)

type view struct {
	userID int64
	panel  string
	source string
}

type fakeRecorder struct {
	mu    sync.Mutex
	views []view
	err   error
}

func (f *fakeRecorder) RecordView(_ context.Context, userID int64, panel, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view{userID, panel, source})
	return f.err
}

func testMenu(t *testing.T) *menu.Registry {
	t.Helper()
	reg, err := menu.Build(menu.Content{
		RepositoryURL: "https://github.com/junque1r4/rust-telegram-portifolio",
		Social:        []menu.Link{{Label: "Github", URL: "https://github.com/junque1r4"}},
		Jobs:          []menu.Item{{Label: "Alelo"}, {Label: "Vivo"}},
		Skills:        []menu.Item{{Label: "Rust"}},
		Texts: map[string]string{
			menu.Home:        "Welcome to my portifolio",
			menu.AboutMe:     "About me",
			menu.SocialMedia: "Social Media!",
			menu.Jobs:        "Each button will show you a little bit about my experience in each company!",
			menu.Skills:      "Each button will show you a little bit about my experience in each skill!",
			"alelo":          "Alelo text",
			"vivo":           "Vivo text",
			"rust":           "Rust text",
		},
	})
	if err != nil {
		t.Fatalf("menu.Build: %v", err)
	}
	return reg
}

func newDispatcher(t *testing.T, rec ViewRecorder) (*Dispatcher, *tg.Registry) {
	t.Helper()
	d, err := New(Options{Menu: testMenu(t), Recorder: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg := tg.NewRegistry()
	d.Register(reg)
	return d, reg
}

func countButtons(m *tele.ReplyMarkup) (callbacks, links int) {
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			if b.URL != "" {
				links++
			} else {
				callbacks++
			}
		}
	}
	return callbacks, links
}

func TestNewRequiresMenu(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without menu")
	}
}

func TestStartSendsHome(t *testing.T) {
	rec := &fakeRecorder{}
	d, _ := newDispatcher(t, rec)
	c := teletest.NewMessage(1, 42, "/start")

	if err := d.Start(c); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sent := c.Sent()
	if len(sent) != 1 || sent[0].Text() != "Welcome to my portifolio" {
		t.Fatalf("sent = %+v", sent)
	}
	if opts := sent[0].SendOptions(); opts == nil || opts.ParseMode != tele.ModeMarkdown {
		t.Fatalf("send options = %+v", opts)
	}
	markup := sent[0].Markup()
	if len(markup.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(markup.InlineKeyboard))
	}
	if cb, links := countButtons(markup); cb != 4 || links != 1 {
		t.Fatalf("buttons = %d callbacks, %d links; want 4 and 1", cb, links)
	}
	if len(rec.views) != 1 || rec.views[0] != (view{42, menu.Home, SourceStart}) {
		t.Fatalf("views = %+v", rec.views)
	}
}

func TestStartIsAlwaysHome(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	for i := 0; i < 3; i++ {
		c := teletest.NewMessage(i, 1, "/start")
		if err := d.Start(c); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if got := c.Sent()[0].Text(); got != "Welcome to my portifolio" {
			t.Fatalf("run %d: %q", i, got)
		}
	}
}

func TestHelpListsVisibleCommands(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	c := teletest.NewMessage(1, 1, "/help")
	if err := d.Help(c); err != nil {
		t.Fatalf("Help: %v", err)
	}
	want := "These commands are supported:\n/help — Display this text\n/start — Show the main menu"
	if got := c.Sent()[0].Text(); got != want {
		t.Fatalf("help = %q, want %q", got, want)
	}
}

func TestUnknownText(t *testing.T) {
	_, reg := newDispatcher(t, nil)
	c := teletest.NewMessage(1, 1, "hello")
	if err := reg.TextFallback()(c); err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if got := c.Sent()[0].Text(); got != UnknownCommandText {
		t.Fatalf("reply = %q", got)
	}
}

func TestCallbackEditsToPanel(t *testing.T) {
	rec := &fakeRecorder{}
	d, _ := newDispatcher(t, rec)

	jobs := teletest.NewCallback(1, 7, "jobs", false)
	if err := d.OnCallback(jobs); err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if len(jobs.Responds()) != 1 {
		t.Fatalf("responds = %d, want 1", len(jobs.Responds()))
	}
	edits := jobs.Edits()
	if len(edits) != 1 || !strings.HasPrefix(edits[0].Text(), "Each button") {
		t.Fatalf("edits = %+v", edits)
	}

	alelo := teletest.NewCallback(2, 7, "alelo", false)
	if err := d.OnCallback(alelo); err != nil {
		t.Fatalf("alelo: %v", err)
	}
	edit := alelo.Edits()[0]
	if edit.Text() != "Alelo text" {
		t.Fatalf("text = %q", edit.Text())
	}
	kb := edit.Markup().InlineKeyboard
	if len(kb) != 1 || len(kb[0]) != 1 || kb[0][0].Data != menu.Back {
		t.Fatalf("keyboard = %+v", kb)
	}
	if len(rec.views) != 2 || rec.views[1] != (view{7, "alelo", SourceCallback}) {
		t.Fatalf("views = %+v", rec.views)
	}
}

func TestBackIsCaseInsensitive(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	for _, tok := range []string{"BACK", "back", "Back"} {
		c := teletest.NewCallback(1, 1, tok, false)
		if err := d.OnCallback(c); err != nil {
			t.Fatalf("%s: %v", tok, err)
		}
		if got := c.Edits()[0].Text(); got != "Welcome to my portifolio" {
			t.Fatalf("%s: edited to %q", tok, got)
		}
	}
}

func TestUnknownCallbackIsEchoed(t *testing.T) {
	rec := &fakeRecorder{}
	d, _ := newDispatcher(t, rec)
	c := teletest.NewCallback(1, 1, "xyz-Unknown", false)
	if err := d.OnCallback(c); err != nil {
		t.Fatalf("OnCallback: %v", err)
	}
	if len(c.Responds()) != 1 {
		t.Fatalf("responds = %d, want 1", len(c.Responds()))
	}
	if len(c.Edits()) != 0 {
		t.Fatalf("unexpected edit")
	}
	if got := c.Sent()[0].Text(); got != "You chose: xyz-Unknown" {
		t.Fatalf("echo = %q", got)
	}
	if len(rec.views) != 0 {
		t.Fatalf("echo must not be recorded: %+v", rec.views)
	}
}

func TestInlineCallbackEditsInlineMessage(t *testing.T) {
	rec := &fakeRecorder{}
	d, _ := newDispatcher(t, rec)

	c := teletest.NewCallback(1, 3, "skills", true)
	if err := d.OnCallback(c); err != nil {
		t.Fatalf("OnCallback: %v", err)
	}
	if len(c.Edits()) != 1 || len(c.Sent()) != 0 {
		t.Fatalf("edits = %d, sent = %d", len(c.Edits()), len(c.Sent()))
	}
	if rec.views[0].source != SourceInlineCallback {
		t.Fatalf("source = %q", rec.views[0].source)
	}

	echo := teletest.NewCallback(2, 3, "nope", true)
	if err := d.OnCallback(echo); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if len(echo.Sent()) != 0 || echo.Edits()[0].Text() != "You chose: nope" {
		t.Fatalf("inline echo must edit: sent=%+v edits=%+v", echo.Sent(), echo.Edits())
	}
}

func TestCallbackNotModifiedIsIgnored(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	c := teletest.NewCallback(1, 1, "home", false)
	c.EditErr = tele.ErrSameMessageContent
	if err := d.OnCallback(c); err != nil {
		t.Fatalf("OnCallback: %v", err)
	}
}

func TestCallbackEditFailureIsReturned(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	c := teletest.NewCallback(1, 1, "home", false)
	c.EditErr = errors.New("boom")
	if err := d.OnCallback(c); err == nil {
		t.Fatal("expected error")
	}
	if len(c.Responds()) != 1 {
		t.Fatalf("callback must be acknowledged before the edit")
	}
}

func TestRecorderFailureIsNotReturned(t *testing.T) {
	d, _ := newDispatcher(t, &fakeRecorder{err: errors.New("db down")})
	if err := d.Start(teletest.NewMessage(1, 1, "/start")); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestInlineQueryAnswersHomeArticle(t *testing.T) {
	rec := &fakeRecorder{}
	d, _ := newDispatcher(t, rec)
	c := teletest.NewQuery(1, 9, "whatever the user typed")
	if err := d.OnInlineQuery(c); err != nil {
		t.Fatalf("OnInlineQuery: %v", err)
	}
	answers := c.Answers()
	if len(answers) != 1 || len(answers[0].Results) != 1 {
		t.Fatalf("answers = %+v", answers)
	}
	article, ok := answers[0].Results[0].(*tele.ArticleResult)
	if !ok {
		t.Fatalf("result type %T", answers[0].Results[0])
	}
	if article.ResultID() != "0" || article.Title != menu.DefaultInlineTitle {
		t.Fatalf("article = %+v", article)
	}
	content, ok := article.Content.(*tele.InputTextMessageContent)
	if !ok || content.Text != "Welcome to my portifolio" || content.ParseMode != tele.ModeMarkdown {
		t.Fatalf("content = %+v", article.Content)
	}
	if article.ReplyMarkup == nil || len(article.ReplyMarkup.InlineKeyboard) != 3 {
		t.Fatalf("markup = %+v", article.ReplyMarkup)
	}
	if rec.views[0] != (view{9, menu.Home, SourceInlineQuery}) {
		t.Fatalf("views = %+v", rec.views)
	}
}

func TestRegisterWiresRegistry(t *testing.T) {
	_, reg := newDispatcher(t, nil)
	for _, name := range []string{"/start", "/help"} {
		if _, _, ok := reg.LookupCommand(name); !ok {
			t.Fatalf("%s not registered", name)
		}
	}
	c := teletest.NewCallback(1, 1, "about_me", false)
	if err := reg.CallbackFallback()(c); err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if got := c.Edits()[0].Text(); got != "About me" {
		t.Fatalf("fallback edited to %q", got)
	}
}

func TestSendFailuresAreReturned(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	boom := errors.New("network down")
	handlers := map[string]func(tele.Context) error{
		"start":   d.Start,
		"help":    d.Help,
		"unknown": d.UnknownText,
	}
	for name, h := range handlers {
		c := teletest.NewMessage(1, 1, "/"+name)
		c.SendErr = boom
		if err := h(c); !errors.Is(err, boom) {
			t.Errorf("%s: err = %v, want %v", name, err, boom)
		}
	}
}

func TestUnknownCallbackNavigates(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	c := teletest.NewCallback(1, 1, "Skills", false)
	if err := d.UnknownCallback(c); err != nil {
		t.Fatalf("UnknownCallback: %v", err)
	}
	if len(c.Responds()) != 1 || !strings.Contains(c.Edits()[0].Text(), "each skill") {
		t.Fatalf("responds=%d edits=%+v", len(c.Responds()), c.Edits())
	}
}
