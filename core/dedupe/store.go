// Package dedupe remembers handled Telegram update IDs so redelivered updates
// (webhook retries, restarts after a crash mid-batch) are processed once.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/folio/core/config"
	"github.com/m3rciful/folio/core/logger"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("dedupe: store closed")

// Store records keys for a limited time.
type Store interface {
	// Claim records key and reports whether it was new within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	Close() error
}

// Open builds the store selected by cfg. It returns a nil Store for the "none" backend.
func Open(cfg coreconfig.DedupeConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case coreconfig.DedupeNone, "":
		return nil, nil
	case coreconfig.DedupeMemory:
		store = NewMemory(ttl)
	case coreconfig.DedupeBolt:
		store, err = OpenBolt(cfg.Path, ttl)
	case coreconfig.DedupeRedis:
		var client RedisClient
		client, err = ConnectRedis(cfg.Redis)
		if err == nil {
			store = NewRedis(client, cfg.Redis.Prefix, ttl)
		}
	default:
		return nil, fmt.Errorf("dedupe: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("dedupe: open %s: %w", cfg.Backend, err)
	}
	logger.Dedupe.Info("dedupe store ready",
		slog.String("event", "dedupe.open"),
		slog.String("backend", cfg.Backend),
		slog.Duration("ttl", ttl),
	)
	return store, nil
}
