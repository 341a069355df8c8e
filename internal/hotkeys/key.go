package hotkeys

import (
	"fmt"
	"strconv"
	"strings"
)

// Key represents a Win32 virtual-key code.
type Key uint32

const (
	KeyBackspace  Key = 0x08
	KeyTab        Key = 0x09
	KeyReturn     Key = 0x0D
	KeyPause      Key = 0x13
	KeyCapsLock   Key = 0x14
	KeyEscape     Key = 0x1B
	KeySpace      Key = 0x20
	KeyPageUp     Key = 0x21
	KeyPageDown   Key = 0x22
	KeyEnd        Key = 0x23
	KeyHome       Key = 0x24
	KeyLeft       Key = 0x25
	KeyUp         Key = 0x26
	KeyRight      Key = 0x27
	KeyDown       Key = 0x28
	KeyInsert     Key = 0x2D
	KeyDelete     Key = 0x2E
	KeyF1         Key = 0x70
	KeyF24        Key = 0x87
	KeyScrollLock Key = 0x91
	KeyLShift     Key = 0xA0
	KeyRShift     Key = 0xA1
	KeyLControl   Key = 0xA2
	KeyRControl   Key = 0xA3
	KeyLMenu      Key = 0xA4
	KeyRMenu      Key = 0xA5

	// KeyLeftBracket is VK_OEM_4 ("[{" on US layouts).
	KeyLeftBracket Key = 0xDB
)

// Letter returns the key for an ASCII letter, either case.
func Letter(ch byte) Key {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	return Key(ch)
}

// Digit returns the key for the top-row digit n (0-9).
func Digit(n int) Key { return Key('0' + n) }

// FunctionKey returns the key for Fn, n in 1..24.
func FunctionKey(n int) Key { return KeyF1 + Key(n-1) }

var keyByName = map[string]Key{
	"left":       KeyLeft,
	"leftarrow":  KeyLeft,
	"right":      KeyRight,
	"rightarrow": KeyRight,
	"up":         KeyUp,
	"uparrow":    KeyUp,
	"down":       KeyDown,
	"downarrow":  KeyDown,
	"space":      KeySpace,
	"enter":      KeyReturn,
	"return":     KeyReturn,
	"tab":        KeyTab,
	"esc":        KeyEscape,
	"escape":     KeyEscape,
	"backspace":  KeyBackspace,
	"home":       KeyHome,
	"end":        KeyEnd,
	"pageup":     KeyPageUp,
	"pagedown":   KeyPageDown,
	"insert":     KeyInsert,
	"delete":     KeyDelete,
	"capslock":   KeyCapsLock,
	"lshift":     KeyLShift,
	"rshift":     KeyRShift,
	"lctrl":      KeyLControl,
	"rctrl":      KeyRControl,
	"lalt":       KeyLMenu,
	"ralt":       KeyRMenu,
	"pause":      KeyPause,
	"scrolllock": KeyScrollLock,
	"[":          KeyLeftBracket,
}

// canonicalKeyName is the name String() prints for named keys.
var canonicalKeyName = map[Key]string{
	KeyLeft:        "left",
	KeyRight:       "right",
	KeyUp:          "up",
	KeyDown:        "down",
	KeySpace:       "space",
	KeyReturn:      "enter",
	KeyTab:         "tab",
	KeyEscape:      "esc",
	KeyBackspace:   "backspace",
	KeyHome:        "home",
	KeyEnd:         "end",
	KeyPageUp:      "pageup",
	KeyPageDown:    "pagedown",
	KeyInsert:      "insert",
	KeyDelete:      "delete",
	KeyCapsLock:    "capslock",
	KeyLShift:      "lshift",
	KeyRShift:      "rshift",
	KeyLControl:    "lctrl",
	KeyRControl:    "rctrl",
	KeyLMenu:       "lalt",
	KeyRMenu:       "ralt",
	KeyPause:       "pause",
	KeyScrollLock:  "scrolllock",
	KeyLeftBracket: "[",
}

// ParseKey parses a key token such as "h", "7", "left", "F5" or "capslock".
// Matching is case-insensitive.
func ParseKey(raw string) (Key, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("missing key token")
	}

	if key, ok := keyByName[token]; ok {
		return key, nil
	}

	if len(token) == 1 {
		ch := token[0]
		if ch >= 'a' && ch <= 'z' {
			return Letter(ch), nil
		}
		if ch >= '0' && ch <= '9' {
			return Digit(int(ch - '0')), nil
		}
	}

	if strings.HasPrefix(token, "f") {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 24 {
			return FunctionKey(n), nil
		}
	}

	return 0, fmt.Errorf("unknown key: %q", raw)
}

// String returns the canonical token for k, suitable for ParseKey.
func (k Key) String() string {
	if name, ok := canonicalKeyName[k]; ok {
		return name
	}
	switch {
	case k >= 'A' && k <= 'Z':
		return string(rune(k - 'A' + 'a'))
	case k >= '0' && k <= '9':
		return string(rune(k))
	case k >= KeyF1 && k <= KeyF24:
		return "f" + strconv.Itoa(int(k-KeyF1)+1)
	}
	return fmt.Sprintf("0x%02X", uint32(k))
}
