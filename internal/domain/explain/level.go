package explain

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the requested audience sophistication tier.
type Level string

const (
	// LevelBeginner targets readers with no background.
	LevelBeginner Level = "beginner"
	// LevelIntermediate targets readers with basic background.
	LevelIntermediate Level = "intermediate"
	// LevelAdvanced targets readers with domain familiarity.
	LevelAdvanced Level = "advanced"
)

// DefaultLevel is used when no level is requested.
const DefaultLevel = LevelIntermediate

// ErrInvalidLevel is returned by ParseLevel under the strict policy.
var ErrInvalidLevel = errors.New("invalid level: choose beginner, intermediate, or advanced")

// ParseLevel normalizes a requested level. Input is case-insensitive and an
// empty value maps to DefaultLevel. Unrecognized values error under the
// strict policy; with lenient=true they fall back to DefaultLevel instead.
func ParseLevel(raw string, lenient bool) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "":
		return DefaultLevel, nil
	case string(LevelBeginner):
		return LevelBeginner, nil
	case string(LevelIntermediate):
		return LevelIntermediate, nil
	case string(LevelAdvanced):
		return LevelAdvanced, nil
	}
	if lenient {
		return DefaultLevel, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidLevel, raw)
}

// Levels returns all recognized levels in definition order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}
