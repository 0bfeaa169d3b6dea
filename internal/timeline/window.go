package timeline

import "fmt"

// Application-wide window defaults.
const (
	DefaultStart = "09:00"
	DefaultEnd   = "17:00"

	// MinWindowMinutes is the width a zero or inverted window is widened to.
	MinWindowMinutes = 60
)

// Window is the [Start, End] range, in minutes after midnight, that every
// activity time must fall within. End is always greater than Start.
type Window struct {
	Start int
	End   int
}

// ClockPair is a start/end pair of "HH:MM" strings. An empty string means
// the value was not supplied.
type ClockPair struct {
	Start string
	End   string
}

// ResolveWindow picks start and end independently from override, then
// shared, then def, parses them, and guarantees a positive duration.
// It is pure and cheap; callers recompute it whenever an input changes.
func ResolveWindow(override, shared, def ClockPair) Window {
	defStart := ParseClock(def.Start, ParseClock(DefaultStart, DefaultFallbackMinutes))
	defEnd := ParseClock(def.End, ParseClock(DefaultEnd, DefaultFallbackMinutes))

	start := ParseClock(firstNonEmpty(override.Start, shared.Start, def.Start), defStart)
	end := ParseClock(firstNonEmpty(override.End, shared.End, def.End), defEnd)
	return NewWindow(start, end)
}

// NewWindow builds a window, widening it to MinWindowMinutes past start when
// end does not come after start.
func NewWindow(start, end int) Window {
	if end <= start {
		end = start + MinWindowMinutes
	}
	return Window{Start: start, End: end}
}

// Duration returns the window width in minutes.
func (w Window) Duration() int {
	return w.End - w.Start
}

// Contains reports whether m lies within the window, bounds included.
func (w Window) Contains(m int) bool {
	return m >= w.Start && m <= w.End
}

// Clamp pins m into the window.
func (w Window) Clamp(m int) int {
	if m < w.Start {
		return w.Start
	}
	if m > w.End {
		return w.End
	}
	return m
}

// Clocks returns the window bounds as "HH:MM" strings.
func (w Window) Clocks() ClockPair {
	return ClockPair{Start: FormatHHMM(w.Start), End: FormatHHMM(w.End)}
}

func (w Window) String() string {
	return fmt.Sprintf("%s – %s", FormatClock(w.Start), FormatClock(w.End))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
