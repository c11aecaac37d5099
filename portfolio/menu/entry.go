package menu

import (
	"github.com/m3rciful/folio/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Action is what a button does: open another panel or an external link.
type Action struct {
	Target string
	URL    string
}

// Callback returns an action that navigates to the panel id.
func Callback(id string) Action { return Action{Target: id} }

// OpenLink returns an action that opens url.
func OpenLink(url string) Action { return Action{URL: url} }

// IsLink reports whether the action opens a URL.
func (a Action) IsLink() bool { return a.URL != "" }

// Button is a labelled action.
type Button struct {
	Label  string
	Action Action
}

// Entry is one navigable panel.
type Entry struct {
	ID       string
	Text     string
	Keyboard [][]Button
}

// Markup renders the keyboard as a new inline markup. Callback buttons carry
// the target identifier as raw callback data.
func (e Entry) Markup() *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, len(e.Keyboard))
	for i, row := range e.Keyboard {
		rows[i] = make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			rows[i][j] = keyboard.InlineBtn{Text: b.Label, Data: b.Action.Target, URL: b.Action.URL}
		}
	}
	return keyboard.InlineButtonsRows(rows...)
}

// Buttons returns every button of the entry in row order.
func (e Entry) Buttons() []Button {
	var out []Button
	for _, row := range e.Keyboard {
		out = append(out, row...)
	}
	return out
}
