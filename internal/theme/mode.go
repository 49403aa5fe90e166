// Package theme holds the persisted theme mode, its toggle rules, and the
// engine that turns mode plus the platform's dark-mode signal into the
// boolean the presentation layer renders with.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"reviewapp/internal/preferences/flow"
)

// Mode is the user's persisted theme choice.
type Mode int

const (
	ModeSystem Mode = iota
	ModeLight
	ModeDark
)

// ErrUnknownMode is returned when parsing an unrecognised mode name.
var ErrUnknownMode = errors.New("unknown theme mode")

func (m Mode) String() string {
	switch m {
	case ModeLight:
		return "light"
	case ModeDark:
		return "dark"
	default:
		return "system"
	}
}

// ParseMode accepts the persisted names case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return ModeLight, nil
	case "dark":
		return ModeDark, nil
	case "system":
		return ModeSystem, nil
	default:
		return ModeSystem, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Codec persists a Mode by name.
var Codec = flow.Codec[Mode]{
	Parse:  ParseMode,
	Format: Mode.String,
}

// Next is the toggle transition: LIGHT and DARK swap, and SYSTEM always goes
// to DARK regardless of what the platform currently shows.
func Next(m Mode) Mode {
	switch m {
	case ModeDark:
		return ModeLight
	default:
		return ModeDark
	}
}

// Resolve reports whether the UI should render dark.
func Resolve(m Mode, systemDark bool) bool {
	switch m {
	case ModeLight:
		return false
	case ModeDark:
		return true
	default:
		return systemDark
	}
}
