// Command puncfix watches the clipboard and rewrites Chinese punctuation in
// copied text into ASCII punctuation.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fncaps/internal/logging"
	"fncaps/internal/punct"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("puncfix", flag.ContinueOnError)
	interval := fs.Duration("interval", punct.DefaultInterval, "clipboard poll interval")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	closeLog := logging.Setup(logging.Options{Level: slog.LevelInfo})
	defer closeLog()

	if !punct.Available() {
		slog.Error("[DEBUG-PUNCT] no clipboard backend available")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll := max(*interval, 10*time.Millisecond)
	slog.Info("[DEBUG-PUNCT] watching clipboard", "interval", poll)
	punct.NewWatcher(punct.SystemClipboard{}, poll).Run(ctx)
	return 0
}
