package logging

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler forwards every record to base and mirrors records at or above
// minLevel to mirror. Enabled is decided by base alone.
type TeeHandler struct {
	base     slog.Handler
	mirror   slog.Handler
	minLevel slog.Level
}

// NewTeeHandler returns a handler over base. A nil mirror disables teeing.
func NewTeeHandler(base, mirror slog.Handler, minLevel slog.Level) *TeeHandler {
	return &TeeHandler{
		base:     base,
		mirror:   mirror,
		minLevel: minLevel,
	}
}

func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle writes to base first. The mirror still receives the record when
// base fails; both errors are joined.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)
	if h.mirror != nil && record.Level >= h.minLevel && h.mirror.Enabled(ctx, record.Level) {
		err = errors.Join(err, h.mirror.Handle(ctx, record.Clone()))
	}
	return err
}

func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := &TeeHandler{base: h.base.WithAttrs(attrs), minLevel: h.minLevel}
	if h.mirror != nil {
		next.mirror = h.mirror.WithAttrs(attrs)
	}
	return next
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h // slog.Handler contract: empty group name returns the receiver.
	}
	next := &TeeHandler{base: h.base.WithGroup(name), minLevel: h.minLevel}
	if h.mirror != nil {
		next.mirror = h.mirror.WithGroup(name)
	}
	return next
}
