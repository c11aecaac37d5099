package ui

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestNewArticleResult(t *testing.T) {
	rm := &tele.ReplyMarkup{}
	rm.InlineKeyboard = [][]tele.InlineButton{{{Text: "Jobs", Data: "jobs"}}}

	res := NewArticleResult(ArticleOptions{
		ID:        "0",
		Title:     "What info do you need?",
		Text:      "Welcome",
		ParseMode: tele.ModeMarkdown,
		Markup:    rm,
	})

	if res.ResultID() != "0" {
		t.Fatalf("id = %q", res.ResultID())
	}
	if res.Title != "What info do you need?" {
		t.Fatalf("title = %q", res.Title)
	}
	content, ok := res.Content.(*tele.InputTextMessageContent)
	if !ok {
		t.Fatalf("content type %T", res.Content)
	}
	if content.Text != "Welcome" || content.ParseMode != tele.ModeMarkdown {
		t.Fatalf("content = %+v", content)
	}
	if res.ReplyMarkup != rm {
		t.Fatalf("markup not attached")
	}
}
