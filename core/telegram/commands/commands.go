// Package commands describes slash commands exposed by the bot.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run only for the configured admin and are never listed.
	AdminOnly bool
	// Hidden commands work but are left out of /help and the command menu.
	Hidden  bool
	Aliases []string
}

// Listed reports whether the command belongs in user-facing command lists.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}
