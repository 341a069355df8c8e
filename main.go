// Command fncaps turns CapsLock into a modifier for window switching, wheel
// scrolling, input-method toggling and program launching.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fncaps/internal/config"
	"fncaps/internal/dispatch"
	"fncaps/internal/hotkeys"
	"fncaps/internal/ime"
	"fncaps/internal/keystate"
	"fncaps/internal/launch"
	"fncaps/internal/logging"
	"fncaps/internal/notify"
	"fncaps/internal/singleinstance"
	"fncaps/internal/winselect"
)

func main() {
	os.Exit(run())
}

func run() int {
	setConsoleUTF8()
	closeLog := logging.Setup(logging.Options{Level: slog.LevelInfo})

	// Single-instance check before the hook: two hooks would both act on
	// every key.
	lock, err := singleinstance.TryLock(singleinstance.DefaultAddress)
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			slog.Error("[DEBUG-SINGLE] another instance is already running")
			notify.New(true).Fatal("another instance is already running")
		} else {
			slog.Error("[DEBUG-SINGLE] single-instance lock failed", "error", err)
		}
		closeLog()
		return 1
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			slog.Warn("[DEBUG-SINGLE] lock release failed", "error", releaseErr)
		}
	}()

	configPath := config.DefaultPath()
	settings := config.LoadSettings(configPath)

	// Re-apply logging with the configured level and mirror file.
	closeLog()
	closeLog = logging.Setup(logging.Options{Level: settings.LogLevel, File: settings.LogFile})
	defer closeLog()

	notifier := notify.New(settings.Notify)
	launcher := launch.New()
	input := dispatch.NewInput()
	dispatcher := dispatch.New(dispatch.Deps{
		Windows:   winselect.New(winselect.NewDesktop(), launcher),
		IME:       ime.NewToggler(ime.NewHost(), settings.LocaleEN, settings.LocaleZH),
		Launcher:  launcher,
		Input:     input,
		Secondary: settings.Secondary,
	})
	machine := keystate.New(&settings.Hotkeys, settings.Modifier, settings.Secondary)

	app := NewApp(machine, dispatcher, hotkeys.NewHook(), notifier, configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.startup(ctx); err != nil {
		slog.Error("[DEBUG-HOOK] keyboard hook installation failed", "error", err)
		notifier.Fatal("keyboard hook installation failed: " + err.Error())
		return 1
	}
	slog.Info("[DEBUG-HOOK] fncaps running",
		"config", configPath,
		"rules", len(settings.Hotkeys.Rules),
		"modifier", settings.Modifier.String(),
	)

	app.wait(ctx)
	app.shutdown()
	return 0
}
