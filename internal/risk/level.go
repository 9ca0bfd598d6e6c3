package risk

import (
	"fmt"
	"strings"
)

// Level is an ordinal risk classification.
type Level int

const (
	// Low is the lowest risk level.
	Low Level = iota
	// Moderate is the middle risk level.
	Moderate
	// High is the highest risk level.
	High
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case Low:
		return "LOW"
	case Moderate:
		return "MODERATE"
	case High:
		return "HIGH"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Label returns the badge text shown on result cards.
func (l Level) Label() string {
	switch l {
	case Moderate:
		return "Moderate risk"
	case High:
		return "High risk"
	default:
		return "Low risk"
	}
}

// Percent returns the width of the risk bar for the level.
func (l Level) Percent() int {
	switch l {
	case High:
		return 100
	case Moderate:
		return 60
	default:
		return 30
	}
}

// Max returns the higher of two levels.
func Max(a, b Level) Level {
	if b > a {
		return b
	}
	return a
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(text string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "LOW":
		return Low, nil
	case "MODERATE":
		return Moderate, nil
	case "HIGH":
		return High, nil
	default:
		return Low, fmt.Errorf("unknown risk level %q", text)
	}
}

// MarshalText encodes the level name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
