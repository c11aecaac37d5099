// Package stats records which panels users open and renders the admin summary.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/folio/core/logger"
)

const writeTimeout = 3 * time.Second

// PanelViews is one summary row.
type PanelViews struct {
	Panel string `db:"panel"`
	Views int64  `db:"views"`
	Users int64  `db:"users"`
}

// Summary aggregates views recorded since Since.
type Summary struct {
	Since  time.Time
	Panels []PanelViews
	// Users counts distinct users across all panels.
	Users int64
}

// Views sums views over all panels.
func (s Summary) Views() int64 {
	var n int64
	for _, p := range s.Panels {
		n += p.Views
	}
	return n
}

// Source provides summaries for the /stats command.
type Source interface {
	Summary(ctx context.Context, since time.Time) (Summary, error)
}

// Store keeps panel views in Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database whose schema is migrated.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const insertView = `INSERT INTO panel_views (user_id, panel, source) VALUES ($1, $2, $3)`

// RecordView stores one panel view.
func (s *Store) RecordView(ctx context.Context, userID int64, panel, source string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.db.ExecContext(ctx, insertView, userID, panel, source); err != nil {
		return fmt.Errorf("stats: record view: %w", err)
	}
	logger.LogEvent(ctx, logger.Stats, slog.LevelDebug, "view.recorded",
		slog.String("panel", panel),
		slog.String("source", source),
		slog.Duration("took", logger.Took(start)),
	)
	return nil
}

const (
	selectPanels = `
SELECT panel, COUNT(*) AS views, COUNT(DISTINCT user_id) AS users
FROM panel_views
WHERE viewed_at >= $1
GROUP BY panel
ORDER BY views DESC, panel`

	selectUsers = `SELECT COUNT(DISTINCT user_id) FROM panel_views WHERE viewed_at >= $1`
)

// Summary returns per-panel counts since the given time, busiest panel first.
func (s *Store) Summary(ctx context.Context, since time.Time) (Summary, error) {
	sum := Summary{Since: since}
	if err := s.db.SelectContext(ctx, &sum.Panels, selectPanels, since); err != nil {
		return Summary{}, fmt.Errorf("stats: select panels: %w", err)
	}
	if err := s.db.GetContext(ctx, &sum.Users, selectUsers, since); err != nil {
		return Summary{}, fmt.Errorf("stats: count users: %w", err)
	}
	return sum, nil
}
