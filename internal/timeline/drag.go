package timeline

import "context"

// DragState is the drag controller's state.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
)

func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

// Source is what the drag controller needs from the editor: a way to read
// an activity and a way to commit a new time for it.
type Source interface {
	Get(id int64) (Activity, bool)
	Commit(ctx context.Context, id int64, minutes int) error
}

// Drag gesture messages. Deltas are cumulative pixels since the press.
type (
	DragStart  struct{ ID int64 }
	DragMove   struct{ Delta float64 }
	DragEnd    struct{ Delta float64 }
	DragCancel struct{}
)

// Preview is the uncommitted position of the activity being dragged.
type Preview struct {
	ID     int64
	Time   int
	Offset float64
}

// DragController turns pointer gestures into a single committed relocate.
// The source is never touched until End; Cancel leaves it unchanged.
type DragController struct {
	src    Source
	mapper Mapper

	state   DragState
	id      int64
	origin  float64
	preview int
}

func NewDragController(src Source, m Mapper) *DragController {
	return &DragController{src: src, mapper: m}
}

// SetMapper installs the mapper for the current layout. An in-flight drag
// keeps its origin.
func (d *DragController) SetMapper(m Mapper) { d.mapper = m }

func (d *DragController) State() DragState { return d.state }

// Preview returns the live position while dragging.
func (d *DragController) Preview() (Preview, bool) {
	if d.state != DragDragging {
		return Preview{}, false
	}
	return Preview{
		ID:     d.id,
		Time:   d.preview,
		Offset: d.mapper.TimeToOffset(d.preview),
	}, true
}

// Handle dispatches one gesture message.
func (d *DragController) Handle(ctx context.Context, msg any) error {
	switch msg := msg.(type) {
	case DragStart:
		d.Start(msg.ID)
	case DragMove:
		d.Move(msg.Delta)
	case DragEnd:
		return d.End(ctx, msg.Delta)
	case DragCancel:
		d.Cancel()
	}
	return nil
}

// Start begins dragging id. Starting while another drag is in flight drops
// the old preview. Unknown ids leave the controller idle.
func (d *DragController) Start(id int64) bool {
	a, ok := d.src.Get(id)
	if !ok {
		d.reset()
		return false
	}
	d.state = DragDragging
	d.id = id
	d.origin = d.mapper.TimeToOffset(a.Time)
	d.preview = a.Time
	return true
}

// Move updates the preview only.
func (d *DragController) Move(delta float64) {
	if d.state != DragDragging {
		return
	}
	d.preview = d.mapper.OffsetToTime(d.origin + delta)
}

// End commits the final position and returns to idle.
func (d *DragController) End(ctx context.Context, delta float64) error {
	if d.state != DragDragging {
		return nil
	}
	id := d.id
	final := d.mapper.OffsetToTime(d.origin + delta)
	d.reset()
	return d.src.Commit(ctx, id, final)
}

// Cancel abandons the drag without committing.
func (d *DragController) Cancel() { d.reset() }

func (d *DragController) reset() {
	d.state = DragIdle
	d.id = 0
	d.origin = 0
	d.preview = 0
}
