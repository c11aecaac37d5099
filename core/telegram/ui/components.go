// Package ui builds reusable Telegram presentation objects.
package ui

import tele "gopkg.in/telebot.v4"

// ArticleOptions describes a single inline-query article.
type ArticleOptions struct {
	ID          string
	Title       string
	Description string
	Text        string
	ParseMode   tele.ParseMode
	Markup      *tele.ReplyMarkup
}

// NewArticleResult creates an ArticleResult whose message content is Text
// rendered with ParseMode and followed by Markup.
func NewArticleResult(opts ArticleOptions) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       opts.Title,
		Description: opts.Description,
	}
	result.SetResultID(opts.ID)
	result.SetContent(&tele.InputTextMessageContent{
		Text:      opts.Text,
		ParseMode: opts.ParseMode,
	})
	if opts.ParseMode != "" {
		result.SetParseMode(opts.ParseMode)
	}
	if opts.Markup != nil {
		result.SetReplyMarkup(opts.Markup)
	}
	return result
}
