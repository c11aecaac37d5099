package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/folio/core/logger"
	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// InlineQueryRoute binds h to inline queries.
func InlineQueryRoute(h tele.HandlerFunc) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		var extras []slog.Attr
		if q := c.Query(); q != nil && q.Text != "" {
			extras = append(extras, slog.String("query", logger.SanitizeLimit(q.Text, 64)))
		}
		return handleWithSummary(c, "inline_query", start, func() error {
			return h(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler:  middleware.RecoverMiddleware(handler),
	}
}
