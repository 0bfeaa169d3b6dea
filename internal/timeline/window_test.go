package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaults = ClockPair{Start: DefaultStart, End: DefaultEnd}

func TestResolveWindowPriority(t *testing.T) {
	tests := []struct {
		name     string
		override ClockPair
		shared   ClockPair
		want     Window
	}{
		{"defaults", ClockPair{}, ClockPair{}, Window{540, 1020}},
		{"shared", ClockPair{}, ClockPair{"10:00", "12:00"}, Window{600, 720}},
		{"override wins", ClockPair{"08:00", "18:00"}, ClockPair{"10:00", "12:00"}, Window{480, 1080}},
		{"mixed sources", ClockPair{Start: "11:00"}, ClockPair{End: "13:30"}, Window{660, 810}},
		{"malformed falls back to default", ClockPair{"soon", "later"}, ClockPair{}, Window{540, 1020}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveWindow(tt.override, tt.shared, defaults))
		})
	}
}

func TestResolveWindowCorrectsInvertedAndEmpty(t *testing.T) {
	assert.Equal(t, Window{720, 780}, ResolveWindow(ClockPair{"12:00", "10:00"}, ClockPair{}, defaults))
	assert.Equal(t, Window{720, 780}, ResolveWindow(ClockPair{"12:00", "12:00"}, ClockPair{}, defaults))
}

func TestResolveWindowBadDefaults(t *testing.T) {
	w := ResolveWindow(ClockPair{}, ClockPair{}, ClockPair{"x", "y"})
	assert.Equal(t, Window{540, 1020}, w)
}

func TestWindowHelpers(t *testing.T) {
	w := NewWindow(540, 1020)
	assert.Equal(t, 480, w.Duration())
	assert.True(t, w.Contains(540))
	assert.True(t, w.Contains(1020))
	assert.False(t, w.Contains(1021))
	assert.Equal(t, 540, w.Clamp(-500))
	assert.Equal(t, 1020, w.Clamp(5000))
	assert.Equal(t, 700, w.Clamp(700))
	assert.Equal(t, ClockPair{"09:00", "17:00"}, w.Clocks())
	assert.Equal(t, "9:00 AM – 5:00 PM", w.String())
}
