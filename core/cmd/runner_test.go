package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/folio/core/config"
	coretelegram "github.com/m3rciful/folio/core/telegram"
)

type testCarrier struct{ cfg *coreconfig.Config }

func (c testCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

type testApp struct {
	closed bool
}

func (a *testApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *testApp) Close() error {
	a.closed = true
	return nil
}

func TestRunUsesConfigPathFromEnv(t *testing.T) {
	t.Setenv("FOLIO_TEST_CONFIG", "/tmp/from-env.yaml")

	var loadedPath string
	app := &testApp{}
	loggerFlushed := false
	ran := false

	err := Run(Options{
		ConfigEnvVar:      "FOLIO_TEST_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return testCarrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error {
			loggerFlushed = true
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			ran = true
			if opts.OnStart == nil || opts.OnStop == nil {
				t.Errorf("lifecycle hooks not wrapped")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loadedPath != "/tmp/from-env.yaml" {
		t.Fatalf("loaded %q", loadedPath)
	}
	if !ran || !loggerFlushed || !app.closed {
		t.Fatalf("ran=%v flushed=%v closed=%v", ran, loggerFlushed, app.closed)
	}
}

func TestRunRequiresLoaders(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatalf("expected error without LoadConfig")
	}
	boom := errors.New("boom")
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("load error not wrapped: %v", err)
	}
}
