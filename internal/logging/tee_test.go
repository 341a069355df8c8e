package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestTee() (*slog.Logger, *bytes.Buffer, *bytes.Buffer) {
	var baseBuf, mirrorBuf bytes.Buffer
	base := slog.NewTextHandler(&baseBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	mirror := slog.NewTextHandler(&mirrorBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewTeeHandler(base, mirror, slog.LevelWarn)), &baseBuf, &mirrorBuf
}

func TestTeeHandlerMirrorsByLevel(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l *slog.Logger)
		wantMirror bool
	}{
		{name: "debug", log: func(l *slog.Logger) { l.Debug("[DEBUG-HOOK] event") }, wantMirror: false},
		{name: "info", log: func(l *slog.Logger) { l.Info("[DEBUG-HOOK] event") }, wantMirror: false},
		{name: "warn", log: func(l *slog.Logger) { l.Warn("[DEBUG-HOOK] event") }, wantMirror: true},
		{name: "error", log: func(l *slog.Logger) { l.Error("[DEBUG-HOOK] event") }, wantMirror: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, baseBuf, mirrorBuf := newTestTee()
			tt.log(logger)

			if !strings.Contains(baseBuf.String(), "[DEBUG-HOOK] event") {
				t.Fatalf("base output missing record: %q", baseBuf.String())
			}
			if got := strings.Contains(mirrorBuf.String(), "[DEBUG-HOOK] event"); got != tt.wantMirror {
				t.Fatalf("mirrored = %v, want %v (mirror=%q)", got, tt.wantMirror, mirrorBuf.String())
			}
		})
	}
}

func TestTeeHandlerAttrsAndGroupsReachBoth(t *testing.T) {
	logger, baseBuf, mirrorBuf := newTestTee()
	logger.With("worker", "hook").WithGroup("ev").Warn("dropped", "key", "h")

	for name, out := range map[string]string{"base": baseBuf.String(), "mirror": mirrorBuf.String()} {
		if !strings.Contains(out, "worker=hook") || !strings.Contains(out, "ev.key=h") {
			t.Errorf("%s output = %q, want worker attr and grouped key", name, out)
		}
	}
}

func TestTeeHandlerNilMirror(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewTeeHandler(base, nil, slog.LevelWarn))
	logger.Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("base output = %q", buf.String())
	}
}

func TestTeeHandlerWithGroupEmptyReturnsReceiver(t *testing.T) {
	h := NewTeeHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), nil, slog.LevelWarn)
	if got := h.WithGroup(""); got != h {
		t.Fatal("WithGroup(\"\") should return the receiver")
	}
	if got := h.WithAttrs(nil); got != h {
		t.Fatal("WithAttrs(nil) should return the receiver")
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeHandlerBaseErrorStillMirrors(t *testing.T) {
	var mirrorBuf bytes.Buffer
	base := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}
	mirror := slog.NewTextHandler(&mirrorBuf, nil)
	h := NewTeeHandler(base, mirror, slog.LevelWarn)

	rec := slog.NewRecord(time.Now(), slog.LevelError, "lost", 0)
	err := h.Handle(context.Background(), rec)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Handle() error = %v, want base error", err)
	}
	if !strings.Contains(mirrorBuf.String(), "lost") {
		t.Fatalf("mirror output = %q", mirrorBuf.String())
	}
}
