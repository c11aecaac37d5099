package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/callbacks"
	"github.com/m3rciful/folio/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every callback through the registry. Keyed handlers
// win; anything else goes to the registry fallback. The chosen handler is
// responsible for acknowledging the callback exactly once.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		key, _ := callbacks.Parse(cb)
		extras := []slog.Attr{slog.String("cb_key", key)}
		if cb.MessageID != "" {
			extras = append(extras, slog.Bool("inline", true))
		}

		if h, ok := reg.GetCallback(key); ok {
			return handleWithSummary(c, "callback."+normalizeHandlerName(key), start, func() error {
				return h(c)
			}, extras...)
		}

		fallback := reg.CallbackFallback()
		if fallback == nil {
			logHandlerSummary(c, "callback.fallback", start, "skip", nil, extras...)
			return c.Respond()
		}
		return handleWithSummary(c, "callback.fallback", start, func() error {
			return fallback(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(handler),
	}
}
