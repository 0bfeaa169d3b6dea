package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperTimeToOffset(t *testing.T) {
	m := NewMapper(NewWindow(540, 1020), 300)
	assert.InDelta(t, 0, m.TimeToOffset(540), 1e-9)
	assert.InDelta(t, 300, m.TimeToOffset(1020), 1e-9)
	assert.InDelta(t, 150, m.TimeToOffset(780), 1e-9)

	assert.InDelta(t, 0, m.TimeToOffset(0), 1e-9)
	assert.InDelta(t, 300, m.TimeToOffset(1439), 1e-9)
}

func TestMapperOffsetToTime(t *testing.T) {
	m := NewMapper(NewWindow(540, 1020), 300)
	assert.Equal(t, 540, m.OffsetToTime(0))
	assert.Equal(t, 1020, m.OffsetToTime(300))
	assert.Equal(t, 780, m.OffsetToTime(150))

	assert.Equal(t, 540, m.OffsetToTime(-40))
	assert.Equal(t, 1020, m.OffsetToTime(9000))
	assert.Equal(t, 540, m.OffsetToTime(math.NaN()))
	assert.Equal(t, 1020, m.OffsetToTime(math.Inf(1)))
}

func TestMapperSnapsToStep(t *testing.T) {
	// One pixel per minute: 243px is 9:00 + 243min = 13:03, snapped to 13:05.
	m := NewMapper(NewWindow(540, 1020), 480)
	assert.Equal(t, 785, m.OffsetToTime(243))
	assert.Equal(t, 780, m.OffsetToTime(242))
	for px := 0.0; px <= 480; px += 7 {
		assert.Zero(t, m.OffsetToTime(px)%DefaultStep)
	}
}

func TestMapperZeroExtent(t *testing.T) {
	m := NewMapper(NewWindow(540, 1020), 0)
	assert.Equal(t, 540, m.OffsetToTime(100))
	assert.Equal(t, 0.0, m.TimeToOffset(800))
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper(NewWindow(540, 1020), 480)
	for minutes := 540; minutes <= 1020; minutes += DefaultStep {
		assert.Equal(t, minutes, m.OffsetToTime(m.TimeToOffset(minutes)))
	}
}

func TestSnapCustomStep(t *testing.T) {
	m := Mapper{Window: NewWindow(540, 1020), Extent: 480, Step: 15}
	assert.Equal(t, 555, m.Snap(561))
	assert.Equal(t, 570, m.Snap(563))

	m.Step = 0
	assert.Equal(t, 601, m.Snap(600.6))
}

func TestSnapAnchoredAtWindowStart(t *testing.T) {
	// 09:03 to 17:00, one pixel per minute.
	m := NewMapper(NewWindow(543, 1020), 477)
	assert.Equal(t, 543, m.OffsetToTime(0), "window start is reachable")
	assert.Equal(t, 1020, m.OffsetToTime(477), "window end is reachable")
	assert.Equal(t, 548, m.OffsetToTime(5))
	assert.Equal(t, 553, m.OffsetToTime(12))
	assert.Equal(t, 1018, m.OffsetToTime(475))
	for px := 0.0; px < 475; px += 7 {
		assert.Zero(t, (m.OffsetToTime(px)-543)%DefaultStep, "px %v", px)
	}

	assert.Equal(t, 548, m.Snap(547))
	assert.Equal(t, 543, m.Snap(545))
}
