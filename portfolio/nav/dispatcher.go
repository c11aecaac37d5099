// Package nav answers menu commands, button presses and inline queries.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/folio/core/logger"
	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/commands"
	"github.com/m3rciful/folio/core/telegram/helpers"
	"github.com/m3rciful/folio/core/telegram/ui"
	"github.com/m3rciful/folio/portfolio/menu"

	tele "gopkg.in/telebot.v4"
)

const (
	// UnknownCommandText answers text that is not a known command.
	UnknownCommandText = "Command not found!"
	helpHeader         = "These commands are supported:"
	echoPrefix         = "You chose: "
	inlineResultID     = "0"
)

// View sources passed to a ViewRecorder.
const (
	SourceStart          = "start"
	SourceCallback       = "callback"
	SourceInlineCallback = "inline_callback"
	SourceInlineQuery    = "inline_query"
)

// ViewRecorder receives one call per panel shown to a user.
type ViewRecorder interface {
	RecordView(ctx context.Context, userID int64, panel, source string) error
}

// CommandLister lists the commands /help describes.
type CommandLister interface {
	ListCommands(visibleOnly bool) []tele.Command
}

// Options configures a Dispatcher.
type Options struct {
	Menu     *menu.Registry
	Commands CommandLister
	// Recorder is optional.
	Recorder ViewRecorder
}

// Dispatcher holds no per-user state; every update is answered from the menu alone.
type Dispatcher struct {
	menu     *menu.Registry
	commands CommandLister
	recorder ViewRecorder
}

var _ ui.FallbackProvider = (*Dispatcher)(nil)

// New returns a Dispatcher over opts.Menu.
func New(opts Options) (*Dispatcher, error) {
	if opts.Menu == nil {
		return nil, errors.New("nav: menu registry is required")
	}
	return &Dispatcher{menu: opts.Menu, commands: opts.Commands, recorder: opts.Recorder}, nil
}

// Register adds /start and /help to reg and makes the dispatcher the
// fallback for unkeyed callbacks and unmatched text.
func (d *Dispatcher) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{Handler: d.Start, Description: "Show the main menu"})
	reg.RegisterCommand("/help", commands.Command{Handler: d.Help, Description: "Display this text"})
	reg.SetFallbacks(d)
	if d.commands == nil {
		d.commands = reg
	}
}

// Start sends the home panel as a new message.
func (d *Dispatcher) Start(c tele.Context) error {
	home, err := d.menu.Resolve(menu.Home)
	if err != nil {
		return err
	}
	if err := helpers.SendMDSync(c, home.Text, home.Markup()); err != nil {
		return fmt.Errorf("nav: send home: %w", err)
	}
	d.record(c, home.ID, SourceStart)
	return nil
}

// Help lists the visible commands.
func (d *Dispatcher) Help(c tele.Context) error {
	if err := c.Send(d.HelpText()); err != nil {
		return fmt.Errorf("nav: send help: %w", err)
	}
	return nil
}

// HelpText renders the /help reply.
func (d *Dispatcher) HelpText() string {
	var b strings.Builder
	b.WriteString(helpHeader)
	if d.commands == nil {
		return b.String()
	}
	for _, cmd := range d.commands.ListCommands(true) {
		fmt.Fprintf(&b, "\n%s — %s", cmd.Text, cmd.Description)
	}
	return b.String()
}

// OnCallback acknowledges the press, then replaces the pressed message with
// the requested panel. Tokens that name no panel are echoed back.
func (d *Dispatcher) OnCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	ctx := helpers.WithHandler(c, "nav.callback")
	if err := c.Respond(); err != nil {
		logger.Warn(ctx, "nav", "callback.ack_failed", slog.String("err", err.Error()))
	}

	token := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
	inline := cb.MessageID != ""

	entry, err := d.menu.Resolve(token)
	if errors.Is(err, menu.ErrNotFound) {
		logger.Debug(ctx, "nav", "callback.echo",
			slog.String("token", logger.SanitizeLimit(token, 64)),
			slog.Bool("inline", inline),
		)
		if inline {
			return helpers.IgnoreNotModified(c.Edit(echoPrefix + token))
		}
		return c.Send(echoPrefix + token)
	}
	if err != nil {
		return err
	}

	if err := helpers.EditMD(c, entry.Text, entry.Markup()); err != nil {
		return fmt.Errorf("nav: show %s: %w", entry.ID, err)
	}
	source := SourceCallback
	if inline {
		source = SourceInlineCallback
	}
	d.record(c, entry.ID, source)
	return nil
}

// OnInlineQuery offers the home panel as a single article. The query text is ignored.
func (d *Dispatcher) OnInlineQuery(c tele.Context) error {
	home, err := d.menu.Resolve(menu.Home)
	if err != nil {
		return err
	}
	article := ui.NewArticleResult(ui.ArticleOptions{
		ID:        inlineResultID,
		Title:     d.menu.Content().InlineTitle,
		Text:      home.Text,
		ParseMode: tele.ModeMarkdown,
		Markup:    home.Markup(),
	})
	if err := c.Answer(&tele.QueryResponse{Results: tele.Results{article}}); err != nil {
		return fmt.Errorf("nav: answer inline query: %w", err)
	}
	d.record(c, home.ID, SourceInlineQuery)
	return nil
}

// UnknownText answers text that matched no command.
func (d *Dispatcher) UnknownText(c tele.Context) error {
	if err := c.Send(UnknownCommandText); err != nil {
		return fmt.Errorf("nav: send unknown command reply: %w", err)
	}
	return nil
}

// UnknownCallback handles presses of buttons without a registered key, which
// is every menu button.
func (d *Dispatcher) UnknownCallback(c tele.Context) error {
	return d.OnCallback(c)
}

func (d *Dispatcher) record(c tele.Context, panel, source string) {
	if d.recorder == nil {
		return
	}
	_, userID, _ := helpers.UpdateIDs(c)
	ctx := helpers.BuildContext(c)
	if err := d.recorder.RecordView(ctx, userID, panel, source); err != nil {
		logger.Warn(ctx, "nav", "view.record_failed",
			slog.String("panel", panel),
			slog.String("source", source),
			slog.String("err", err.Error()),
		)
	}
}
