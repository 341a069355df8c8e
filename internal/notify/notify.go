// Package notify shows desktop notifications for events the user would not
// otherwise see, since the engine normally runs without a console.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const appName = "fncaps"

// Notifier sends desktop notifications. The zero value is disabled.
type Notifier struct {
	enabled bool
	send    func(title, message string) error
}

// New returns a notifier backed by the OS notification center.
func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// ConfigChanged tells the user that edits take effect after a restart.
func (n *Notifier) ConfigChanged(path string) {
	n.notify("config changed", "Restart fncaps to apply "+path)
}

// Fatal reports a startup failure.
func (n *Notifier) Fatal(message string) {
	n.notify("cannot start", message)
}

func (n *Notifier) notify(title, message string) {
	if n == nil || !n.enabled || n.send == nil {
		return
	}
	// Notification failures are not actionable.
	if err := n.send(appName+": "+title, message); err != nil {
		slog.Debug("[DEBUG-NOTIFY] desktop notification failed", "error", err)
	}
}
