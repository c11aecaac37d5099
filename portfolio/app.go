package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/folio/core/bootstrap"
	"github.com/m3rciful/folio/core/dedupe"
	"github.com/m3rciful/folio/core/health"
	"github.com/m3rciful/folio/core/logger"
	tg "github.com/m3rciful/folio/core/telegram"
	"github.com/m3rciful/folio/core/telegram/middleware"
	"github.com/m3rciful/folio/core/telegram/router"
	"github.com/m3rciful/folio/portfolio/menu"
	"github.com/m3rciful/folio/portfolio/nav"
	"github.com/m3rciful/folio/portfolio/stats"
)

// App owns everything the bot needs between bootstrap and shutdown.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	registry *tg.Registry
	menu     *menu.Registry
	nav      *nav.Dispatcher
	stats    *stats.Handler
	health   *health.Server
}

// Bootstrap initializes logging and optional infrastructure, then builds the app.
func Bootstrap(cfg *Config) (*App, error) {
	infra, err := bootstrap.Run(bootstrap.Options{Config: &cfg.Core})
	if err != nil {
		return nil, err
	}
	app, err := New(cfg, infra)
	if err != nil {
		return nil, errors.Join(err, infra.Close())
	}
	return app, nil
}

// New builds the menu and handlers on top of already initialized infra.
// Statistics are enabled only when infra carries a database.
func New(cfg *Config, infra *bootstrap.Result) (*App, error) {
	if cfg == nil {
		return nil, errors.New("portfolio: nil config")
	}
	tree, err := menu.Build(cfg.Portfolio.Content)
	if err != nil {
		return nil, fmt.Errorf("portfolio: %w", err)
	}

	a := &App{cfg: cfg, infra: infra, registry: tg.NewRegistry(), menu: tree}

	opts := nav.Options{Menu: tree, Commands: a.registry}
	if infra != nil && infra.DB != nil {
		store := stats.NewStore(infra.DB)
		opts.Recorder = store
		a.stats = stats.NewHandler(store, cfg.Portfolio.StatsWindowDays)
	}
	if a.nav, err = nav.New(opts); err != nil {
		return nil, err
	}
	a.nav.Register(a.registry)
	if a.stats != nil {
		if err := a.stats.Register(a.registry, cfg.Core.Telegram.AdminID); err != nil {
			return nil, fmt.Errorf("portfolio: %w", err)
		}
	}

	if addr := cfg.Core.Health.Listen; addr != "" {
		a.health = health.New(addr)
	}

	logger.L.Info("portfolio ready",
		slog.String("event", "app.build"),
		slog.Int("panels", len(tree.IDs())),
		slog.Bool("stats", a.stats != nil),
		slog.Bool("health", a.health != nil),
	)
	return a, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	cmdOpts := router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
		// Strangers get the same answer as for any unknown command.
		OnAdminReject: a.nav.UnknownText,
	}
	routes := router.CommandRoutes(a.registry, cmdOpts)
	routes = append(routes,
		router.CallbackRoute(a.registry),
		router.TextRoute(a.registry, cmdOpts),
		router.InlineQueryRoute(a.nav.OnInlineQuery),
	)

	var store dedupe.Store
	if a.infra != nil {
		store = a.infra.Dedupe
	}

	return tg.RunOptions{
		Config:   &a.cfg.Core,
		Registry: a.registry,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, tg.MiddlewareOptions{
			Dedupe:    store,
			OnLimited: middleware.AckLimitedCallback,
		}),
		Routes:  routes,
		OnStart: a.onStart,
		OnStop:  a.onStop,
	}, nil
}

func (a *App) onStart(_ context.Context, _ tg.Runtime) error {
	if a.health == nil {
		return nil
	}
	go func() {
		if err := a.health.Start(); err != nil {
			logger.HTTP.Error("health server failed",
				slog.String("event", "http.listen"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
	a.health.SetReady(true)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	if a.health == nil {
		return nil
	}
	if err := a.health.Stop(ctx); err != nil {
		return fmt.Errorf("portfolio: stop health server: %w", err)
	}
	return nil
}

// Close releases the database and dedupe store.
func (a *App) Close() error {
	return a.infra.Close()
}
