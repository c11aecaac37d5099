package stats

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/folio/core/logger"
	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/callbacks"
	"github.com/m3rciful/folio/core/telegram/commands"
	"github.com/m3rciful/folio/core/telegram/helpers"
	"github.com/m3rciful/folio/core/telegram/keyboard"
	"github.com/m3rciful/folio/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// RefreshKey is the callback key of the summary buttons.
const RefreshKey = "stats_refresh"

const (
	DefaultWindowDays = 30
	maxWindowDays     = 365
	queryTimeout      = 5 * time.Second
)

// Handler serves /stats and its refresh buttons.
type Handler struct {
	source Source
	days   int
	now    func() time.Time
}

// NewHandler returns a handler reading from src. Non-positive days select the default window.
func NewHandler(src Source, days int) *Handler {
	return &Handler{source: src, days: clampDays(days), now: time.Now}
}

// Register adds the admin-only /stats command and the refresh callback to reg.
func (h *Handler) Register(reg *tg.Registry, adminID int64) error {
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Command,
		Description: "Panel view statistics",
		AdminOnly:   true,
		Hidden:      true,
	})
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID: adminID,
		OnReject: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Not allowed"})
		},
	})
	return reg.RegisterCallback(RefreshKey, adminOnly(h.Refresh))
}

// Command answers "/stats [days]" with a new summary message.
func (h *Handler) Command(c tele.Context) error {
	days := h.days
	if fields := strings.Fields(c.Text()); len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			days = clampDays(n)
		}
	}
	text, err := h.render(c, days)
	if err != nil {
		return err
	}
	return helpers.SendMD(c, text, Keyboard(days))
}

// Refresh re-renders the summary in place for the window in the callback payload.
func (h *Handler) Refresh(c tele.Context) error {
	if err := c.Respond(); err != nil {
		logger.Warn(helpers.BuildContext(c), "stats", "callback.ack_failed", slog.String("err", err.Error()))
	}
	days := h.days
	if n, err := callbacks.PayloadInt(c); err == nil {
		days = clampDays(n)
	}
	text, err := h.render(c, days)
	if err != nil {
		return err
	}
	return helpers.EditMD(c, text, Keyboard(days))
}

func (h *Handler) render(c tele.Context, days int) (string, error) {
	ctx, cancel := context.WithTimeout(helpers.WithHandler(c, "stats"), queryTimeout)
	defer cancel()

	since := h.now().Add(-time.Duration(days) * 24 * time.Hour)
	sum, err := h.source.Summary(ctx, since)
	if err != nil {
		logger.Error(ctx, "stats", "summary.failed",
			slog.Int("days", days),
			slog.String("err", err.Error()),
		)
		return "", err
	}
	return Render(sum, days), nil
}

// Keyboard offers fixed windows plus a refresh of the current one.
func Keyboard(days int) *tele.ReplyMarkup {
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "7d", Unique: RefreshKey, Data: "7"},
		{Text: "30d", Unique: RefreshKey, Data: "30"},
		{Text: "90d", Unique: RefreshKey, Data: "90"},
		{Text: "Refresh", Unique: RefreshKey, Data: strconv.Itoa(days)},
	}, 3)
}

func clampDays(n int) int {
	switch {
	case n <= 0:
		return DefaultWindowDays
	case n > maxWindowDays:
		return maxWindowDays
	}
	return n
}
