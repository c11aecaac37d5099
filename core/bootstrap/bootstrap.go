package bootstrap

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/folio/core/config"
	coredatabase "github.com/m3rciful/folio/core/database"
	"github.com/m3rciful/folio/core/dedupe"
	"github.com/m3rciful/folio/core/logger"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(coreconfig.DatabaseConfig) error
	OpenDedupe func(coreconfig.DedupeConfig) (dedupe.Store, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB and Dedupe are nil when the matching feature is disabled.
type Result struct {
	DB     *sqlx.DB
	Dedupe dedupe.Store
}

// Close releases everything Run opened.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Dedupe != nil {
		if err := r.Dedupe.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dedupe: %w", err))
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run initializes the logger, then the optional database (with migrations)
// and the optional update dedupe store.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if dbCfg := opts.Config.Database; dbCfg.Enabled {
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		res.DB = db

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(dbCfg); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	openDedupe := opts.OpenDedupe
	if openDedupe == nil {
		openDedupe = dedupe.Open
	}
	store, err := openDedupe(opts.Config.Dedupe)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("bootstrap: dedupe store failed: %w", err)
	}
	res.Dedupe = store

	return res, nil
}
