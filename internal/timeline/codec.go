// Package timeline implements the activity schedule editor: clock parsing,
// the event time window, the ordered activity store, snapshot persistence,
// pixel/time mapping and the drag state machine.
package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFallbackMinutes is 09:00, used when a clock string cannot be parsed.
const DefaultFallbackMinutes = 9 * 60

// MinutesPerDay bounds a valid clock value.
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" into minutes after midnight. Empty or malformed
// input yields fallback.
func ParseClock(text string, fallback int) int {
	m, ok := parseClock(text)
	if !ok {
		return fallback
	}
	return m
}

func parseClock(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidClock reports whether text is a well-formed "HH:MM" wall-clock time.
func ValidClock(text string) bool {
	_, ok := parseClock(text)
	return ok
}

// FormatClock renders minutes after midnight as "H:MM AM/PM".
// Both 0 and 12 display as 12.
func FormatClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, suffix)
}

// FormatHHMM renders minutes after midnight as zero-padded "HH:MM".
func FormatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
