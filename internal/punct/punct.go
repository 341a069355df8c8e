// Package punct rewrites full-width Chinese punctuation on the clipboard
// into ASCII punctuation followed by a space where English prose expects one.
package punct

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const DefaultInterval = 200 * time.Millisecond

var replacer = strings.NewReplacer(
	"，", ", ",
	"《", "<",
	"。", ". ",
	"》", ">",
	"、", ", ",
	"？", "? ",
	"；", "; ",
	"：", ": ",
	"“", ` "`,
	"”", `" `,
	"【", "[",
	"】", "]",
	"！", "! ",
	"￥", "$",
	"（", " (",
	"）", ") ",
	"—", "--",
)

// spaceFixes undo spaces the table above inserts between adjacent marks.
// They apply in order.
var spaceFixes = [][2]string{
	{") .", ")."},
	{") ,", "),"},
	{`: "`, `:"`},
}

// Convert returns s with every mapped mark replaced.
func Convert(s string) string {
	out := replacer.Replace(s)
	for _, fix := range spaceFixes {
		out = strings.ReplaceAll(out, fix[0], fix[1])
	}
	return out
}

// Clipboard is the text clipboard; atotto/clipboard satisfies it through
// SystemClipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Watcher converts each new clipboard text once.
type Watcher struct {
	clip     Clipboard
	interval time.Duration
}

// NewWatcher polls clip every interval (DefaultInterval when <= 0).
func NewWatcher(clip Clipboard, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{clip: clip, interval: interval}
}

// Run converts the current clipboard text, then every text that differs from
// the last one seen, until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	last, err := w.clip.ReadAll()
	if err != nil {
		slog.Debug("[DEBUG-PUNCT] clipboard read failed", "error", err)
	} else {
		last = w.process(last)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current, err := w.clip.ReadAll()
			if err != nil {
				slog.Debug("[DEBUG-PUNCT] clipboard read failed", "error", err)
				continue
			}
			if current == last {
				continue
			}
			last = w.process(current)
		}
	}
}

// process converts text and returns what the clipboard now holds.
func (w *Watcher) process(text string) string {
	if text == "" {
		return text
	}
	converted := Convert(text)
	if converted == text {
		return text
	}
	if err := w.clip.WriteAll(converted); err != nil {
		slog.Warn("[DEBUG-PUNCT] clipboard write failed", "error", err)
		return text
	}
	slog.Info("[DEBUG-PUNCT] clipboard punctuation converted", "runes", len([]rune(converted)))
	return converted
}
