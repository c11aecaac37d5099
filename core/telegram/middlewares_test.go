package telegram

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/folio/core/config"
	"github.com/m3rciful/folio/core/dedupe"
)

func middlewareNames(mws []Middleware) []string {
	names := make([]string, len(mws))
	for i, mw := range mws {
		names[i] = mw.Name
	}
	return names
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}}
	got := middlewareNames(DefaultMiddlewares(cfg, MiddlewareOptions{Dedupe: dedupe.NewMemory(time.Minute)}))
	want := []string{"recover", "logger", "dedupe", "rate_limit", "metrics"}
	if len(got) != len(want) {
		t.Fatalf("middlewares = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("middlewares = %v, want %v", got, want)
		}
	}
}

func TestDefaultMiddlewaresMinimal(t *testing.T) {
	got := middlewareNames(DefaultMiddlewares(&coreconfig.Config{}, MiddlewareOptions{}))
	if len(got) != 3 || got[2] != "metrics" {
		t.Fatalf("middlewares = %v", got)
	}
}
