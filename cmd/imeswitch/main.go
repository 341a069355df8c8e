// Command imeswitch is a background daemon that keeps the input method in a
// predictable state: English after every focus change and on Ctrl+Esc or
// Ctrl+[, and native mode whenever the Chinese layout is active.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fncaps/internal/hotkeys"
	"fncaps/internal/ime"
	"fncaps/internal/imeswitch"
	"fncaps/internal/logging"
)

type cliOptions struct {
	runner   imeswitch.Options
	localeEN uint32
	localeZH uint32
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	fs := flag.NewFlagSet("imeswitch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	noReset := fs.Bool("no-ime-resetting", false, "disable: reset to the English layout when the foreground window changes")
	noEscape := fs.Bool("no-escape-switching", false, "disable: Ctrl+Esc / Ctrl+[ switches to English")
	noEnsure := fs.Bool("no-ensure-chinese-mode", false, "disable: keep the Chinese IME in native mode")
	localeEN := fs.Uint("locale-en", uint(ime.DefaultLocaleEN), "English layout locale id")
	localeZH := fs.Uint("locale-zh", uint(ime.DefaultLocaleZH), "Chinese layout locale id")
	pollMS := fs.Uint("poll-ms", 100, "poll interval in milliseconds (minimum 10)")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	for _, l := range []struct {
		name  string
		value uint
	}{{"locale-en", *localeEN}, {"locale-zh", *localeZH}} {
		if l.value > 0xFFFF {
			return cliOptions{}, fmt.Errorf("-%s %d does not fit a language id", l.name, l.value)
		}
	}

	poll := time.Duration(*pollMS) * time.Millisecond
	return cliOptions{
		runner: imeswitch.Options{
			IMEResetting:     !*noReset,
			EscapeSwitching:  !*noEscape,
			EnsureNativeMode: !*noEnsure,
			PollInterval:     max(poll, imeswitch.MinPollInterval),
		},
		localeEN: uint32(*localeEN),
		localeZH: uint32(*localeZH),
	}, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	closeLog := logging.Setup(logging.Options{Level: slog.LevelInfo})
	defer closeLog()

	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	host := ime.NewHost()
	toggler := ime.NewToggler(host, opts.localeEN, opts.localeZH)
	runner := imeswitch.NewRunner(opts.runner, toggler, host.Foreground, hotkeys.NewHook())

	slog.Info("[DEBUG-IME] starting imeswitch daemon",
		"imeResetting", opts.runner.IMEResetting,
		"escapeSwitching", opts.runner.EscapeSwitching,
		"ensureNativeMode", opts.runner.EnsureNativeMode,
		"localeEN", opts.localeEN,
		"localeZH", opts.localeZH,
		"pollInterval", opts.runner.PollInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		slog.Error("[DEBUG-IME] imeswitch stopped with error", "error", err)
		return 1
	}
	return 0
}
