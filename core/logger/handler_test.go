package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	return newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	}), aw
}

func closeWriter(t *testing.T, aw *asyncWriter) {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "menu.render",
		slog.String("status", "OK"),
		slog.String("menu", "jobs"),
	)
	closeWriter(t, aw)

	line := strings.TrimSpace(buf.String())
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=app", "event=menu.render", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "menu=jobs"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	log := slog.New(handler).With("component", "stats")
	LogEvent(ctx, log, slog.LevelError, "stats.record",
		slog.String("status", "fail"),
		slog.Any("err", errors.New("boom")),
	)
	closeWriter(t, aw)

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"stats"`, `"event":"stats.record"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	for _, format := range []logFormat{formatKV, formatJSON} {
		t.Run(string(format), func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler, aw := newTestHandler(buf, format)
			rawRID := "123:456:789"
			ctx := WithRID(context.Background(), rawRID)
			LogEvent(ctx, slog.New(handler), slog.LevelInfo, "rid.test")
			closeWriter(t, aw)

			line := buf.String()
			compact := CompactRID(rawRID)
			if compact != "3f.co.lx" {
				t.Fatalf("CompactRID = %s", compact)
			}
			switch format {
			case formatKV:
				if !strings.Contains(line, "rid="+compact) || strings.Contains(line, "rid_full=") {
					t.Fatalf("unexpected KV rid fields: %s", line)
				}
			case formatJSON:
				if !strings.Contains(line, `"rid":"`+compact+`"`) || !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
					t.Fatalf("unexpected JSON rid fields: %s", line)
				}
			}
		})
	}
}

func TestStructuredHandlerDurationsAndDefaults(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	slog.New(handler).Info("",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("backoff", 2*time.Second),
		slog.String("outcome", "sideways"),
		slog.String("payload", "has space"),
	)
	closeWriter(t, aw)

	line := buf.String()
	for _, want := range []string{"component=app", "event=unknown", "duration_ms=2", "backoff_ms=2000", `payload="has space"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped: %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	slog.New(handler).Debug("hidden")
	closeWriter(t, aw)
	if buf.Len() != 0 {
		t.Fatalf("debug line should be filtered, got %s", buf.String())
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\u200bc\td", 10); got != "abc\td" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("héllo", 2); got != "hé" {
		t.Fatalf("SanitizeLimit truncation = %q", got)
	}
}
