package imeswitch

import "fncaps/internal/hotkeys"

// EscapeDetector recognizes Ctrl+Esc and Ctrl+[ chords. Each chord fires
// once; it re-arms when either key of the chord is released.
type EscapeDetector struct {
	ctrlDown    bool
	triggerDown bool
	triggered   bool
}

func isCtrl(key hotkeys.Key) bool {
	return key == hotkeys.KeyLControl || key == hotkeys.KeyRControl
}

func isTrigger(key hotkeys.Key) bool {
	return key == hotkeys.KeyEscape || key == hotkeys.KeyLeftBracket
}

// Observe feeds one key transition and reports whether the chord fired.
func (d *EscapeDetector) Observe(key hotkeys.Key, pressed bool) bool {
	if pressed {
		if isCtrl(key) {
			d.ctrlDown = true
		}
		if isTrigger(key) {
			d.triggerDown = true
		}
		if d.ctrlDown && d.triggerDown && !d.triggered {
			d.triggered = true
			return true
		}
		return false
	}

	if isCtrl(key) {
		d.ctrlDown = false
	}
	if isTrigger(key) {
		d.triggerDown = false
	}
	if !d.ctrlDown || !d.triggerDown {
		d.triggered = false
	}
	return false
}
