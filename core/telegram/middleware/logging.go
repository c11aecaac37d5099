package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/folio/core/logger"
	"github.com/m3rciful/folio/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/folio/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// UpdateStartKey holds the time the update entered the middleware chain.
const UpdateStartKey = "update_start"

// LoggerMiddleware sets the request id and logging context for the update and
// writes one sampled debug line describing what arrived.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		updateID, userID, chatID := tghelpers.UpdateIDs(c)

		rid := logger.BuildRID(updateID, chatID, userID)
		tghelpers.SetRID(c, rid)
		c.Set(UpdateStartKey, time.Now())
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", UpdateKind(upd)),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil {
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}

			switch {
			case upd.Callback != nil:
				key, payload := callbacks.Parse(upd.Callback)
				if key != "" {
					attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
				}
				if payload != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
				}
				if upd.Callback.MessageID != "" {
					attrs = append(attrs, slog.Bool("inline", true))
				}
			case upd.Query != nil:
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Query.Text, 256)))
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

// UpdateKind names the update type using the rate-limit exclusion vocabulary.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
