package timeline

import "math"

// DefaultStep is the snap granularity in minutes.
const DefaultStep = 5

// Mapper converts between a pixel offset along a track of Extent pixels and
// a minute inside Window. Build a fresh Mapper whenever the window or the
// track size changes.
type Mapper struct {
	Window Window
	Extent float64
	Step   int
}

// NewMapper returns a mapper with the default snap step.
func NewMapper(w Window, extent float64) Mapper {
	return Mapper{Window: w, Extent: extent, Step: DefaultStep}
}

// TimeToOffset maps minutes onto the track, clamped to [0, Extent].
func (m Mapper) TimeToOffset(minutes int) float64 {
	if m.Extent <= 0 {
		return 0
	}
	px := float64(minutes-m.Window.Start) / float64(m.Window.Duration()) * m.Extent
	return math.Min(math.Max(px, 0), m.Extent)
}

// OffsetToTime maps a pixel offset back to minutes, snapped to the Step grid
// and clamped into the window. The window end stays reachable when the grid
// does not land on it.
func (m Mapper) OffsetToTime(px float64) int {
	if m.Extent <= 0 || math.IsNaN(px) {
		return m.Window.Start
	}
	px = math.Min(math.Max(px, 0), m.Extent)
	raw := float64(m.Window.Start) + px/m.Extent*float64(m.Window.Duration())
	t := m.Snap(raw)
	if end := float64(m.Window.End); math.Abs(end-raw) < math.Abs(float64(t)-raw) {
		t = m.Window.End
	}
	return m.Window.Clamp(t)
}

// Snap rounds minutes to the nearest whole number of Steps from the window
// start.
func (m Mapper) Snap(minutes float64) int {
	step := m.Step
	if step <= 0 {
		step = 1
	}
	start := m.Window.Start
	return start + int(math.Round((minutes-float64(start))/float64(step)))*step
}
