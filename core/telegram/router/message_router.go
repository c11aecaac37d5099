package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextRoute handles text that no command endpoint claimed: commands written
// with a bot mention or extra arguments are resolved through the registry,
// everything else goes to the registry's text fallback. Admin-only commands
// get the same admin check as in CommandRoutes.
func TextRoute(reg *tg.Registry, opts CommandRouteOptions) tg.Route {
	adminOnly := opts.adminOnly()
	handler := func(c tele.Context) error {
		start := time.Now()

		text := strings.TrimSpace(c.Text())
		if strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && (cmd.Listed() || cmd.AdminOnly) {
				inner := cmd.Handler
				if cmd.AdminOnly {
					inner = adminOnly(inner)
				}
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return inner(c)
				})
			}
		}

		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return fb(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(handler),
	}
}
