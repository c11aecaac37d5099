package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/folio/core/config"
	"github.com/m3rciful/folio/core/dedupe"
	"github.com/m3rciful/folio/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions feeds DefaultMiddlewares.
type MiddlewareOptions struct {
	// Dedupe, when set, drops updates that were already handled.
	Dedupe dedupe.Store
	// OnLimited runs when an update is dropped by the rate limiter.
	// Defaults to middleware.AckLimitedCallback.
	OnLimited tele.HandlerFunc
}

// DefaultMiddlewares builds the global chain: recover, logging context,
// dedupe, rate limit, then message metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}

	if opts.Dedupe != nil {
		mws = append(mws, Middleware{Name: "dedupe", Use: middleware.DedupeMiddleware(opts.Dedupe)})
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			onLimited := opts.OnLimited
			if onLimited == nil {
				onLimited = middleware.AckLimitedCallback
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
