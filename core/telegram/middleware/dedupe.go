package middleware

import (
	"log/slog"
	"strconv"

	"github.com/m3rciful/folio/core/dedupe"
	"github.com/m3rciful/folio/core/logger"
	tghelpers "github.com/m3rciful/folio/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// DedupeMiddleware drops updates whose ID the store has already claimed.
// Store failures are logged and the update is handled anyway.
func DedupeMiddleware(store dedupe.Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if store == nil {
			return next
		}
		return func(c tele.Context) error {
			id := c.Update().ID
			if id == 0 {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			fresh, err := store.Claim(ctx, strconv.Itoa(id))
			if err != nil {
				logger.Warn(ctx, "dedupe", "dedupe.claim",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
				return next(c)
			}
			if !fresh {
				logger.Info(ctx, "dedupe", "dedupe.skip",
					slog.String("status", "duplicate"),
					slog.Int("update_id", id),
				)
				return nil
			}
			return next(c)
		}
	}
}
