package model

import "strings"

// Level is an ordered log severity.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelTrace:   "trace",
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelSuccess: "success",
	LevelWarn:    "warn",
	LevelError:   "error",
}

// String returns the lowercase level name used as a label and color key.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "info"
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and accepts common aliases. ok is false for unknown names, in which case
// LevelInfo is returned.
func ParseLevel(s string) (lvl Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "success", "ok", "pass":
		return LevelSuccess, true
	case "warn", "warning":
		return LevelWarn, true
	case "error", "err", "fail":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Levels returns every level in ascending severity.
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelSuccess, LevelWarn, LevelError}
}
