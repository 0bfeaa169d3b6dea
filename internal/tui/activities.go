package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/timeline"
)

// Track layout inside the panel, in cells. The panel has a one-cell border
// and 1x2 padding.
const (
	panelInsetX = 3
	panelInsetY = 2

	trackHeaderRows = 4 // title, blank, clock labels, ruler
	minTrackWidth   = 20
)

type activitiesModel struct {
	sess   *session
	width  int
	height int

	// Screen position of the panel's top-left corner.
	originX int
	originY int

	cursor  int64 // selected activity id
	drag    *timeline.DragController
	pressX  int
	pressed bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName *string
	formTime *string
}

func newActivitiesModel(s *session) activitiesModel {
	name, clock := "", ""
	m := activitiesModel{
		sess:     s,
		formName: &name,
		formTime: &clock,
	}
	m.drag = timeline.NewDragController(s.editor, m.mapper())
	return m
}

func (m *activitiesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.sync()
}

func (m *activitiesModel) setOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// extent is the drawable track width in cells; the ruler spans extent+1.
func (m activitiesModel) extent() int {
	return max(m.width-8-1, minTrackWidth)
}

func (m activitiesModel) mapper() timeline.Mapper {
	mp := m.sess.editor.Mapper(float64(m.extent()))
	mp.Step = m.sess.snapStep()
	return mp
}

// sync rebuilds the mapper for the current window and layout and keeps the
// cursor on an existing activity.
func (m *activitiesModel) sync() {
	m.drag.SetMapper(m.mapper())
	acts := m.sess.editor.Activities()
	if len(acts) == 0 {
		m.cursor = 0
		return
	}
	if _, ok := m.sess.editor.Get(m.cursor); !ok {
		m.cursor = acts[0].ID
	}
}

func (m activitiesModel) update(msg tea.Msg) (activitiesModel, tea.Cmd) {
	// Edits made before the snapshot lands would be overwritten by it.
	if !m.sess.hydrated {
		return m, nil
	}
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.drag.State() == timeline.DragDragging {
			if key.Matches(msg, keys.Back) {
				m.cancelDrag()
				return m, func() tea.Msg { return statusMsg{text: "Move cancelled"} }
			}
			return m, nil
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m activitiesModel) updateList(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	ctx := m.sess.ctx
	acts := m.sess.editor.Activities()
	idx := m.sess.editor.Store().Index(m.cursor)

	switch {
	case key.Matches(msg, keys.Up):
		if idx > 0 {
			m.cursor = acts[idx-1].ID
		}
	case key.Matches(msg, keys.Down):
		if idx >= 0 && idx < len(acts)-1 {
			m.cursor = acts[idx+1].ID
		}
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
		if idx < 0 {
			return m, nil
		}
		step := m.sess.snapStep()
		if key.Matches(msg, keys.Left) {
			step = -step
		}
		// Same grid as the drag path.
		target := m.mapper().Snap(float64(acts[idx].Time + step))
		if _, err := m.sess.editor.Relocate(ctx, m.cursor, target); err != nil {
			return m, func() tea.Msg { return errStatus(err) }
		}
	case key.Matches(msg, keys.New):
		return m.showAddForm()
	case key.Matches(msg, keys.Delete):
		if idx < 0 {
			return m, nil
		}
		removed := acts[idx]
		err := m.sess.editor.Remove(ctx, removed.ID)
		m.sync()
		if err != nil {
			return m, func() tea.Msg { return errStatus(err) }
		}
		return m, func() tea.Msg { return statusMsg{text: "Removed " + removed.Name} }
	}
	return m, nil
}

// updateMouse turns left-button gestures on a marker into drag messages.
func (m activitiesModel) updateMouse(msg tea.MouseMsg) (activitiesModel, tea.Cmd) {
	ctx := m.sess.ctx
	col := msg.X - m.originX - panelInsetX

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		id, ok := m.hit(col, msg.Y-m.originY-panelInsetY)
		if !ok {
			return m, nil
		}
		m.cursor = id
		m.pressX = msg.X
		m.pressed = m.drag.Start(id)

	case tea.MouseActionMotion:
		if !m.pressed {
			return m, nil
		}
		_ = m.drag.Handle(ctx, timeline.DragMove{Delta: float64(msg.X - m.pressX)})

	case tea.MouseActionRelease:
		if !m.pressed || m.drag.State() != timeline.DragDragging {
			m.pressed = false
			return m, nil
		}
		m.pressed = false
		err := m.drag.Handle(ctx, timeline.DragEnd{Delta: float64(msg.X - m.pressX)})
		if err != nil {
			return m, func() tea.Msg { return errStatus(err) }
		}
		if a, ok := m.sess.editor.Get(m.cursor); ok {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("%s moved to %s", a.Name, timeline.FormatClock(a.Time))}
			}
		}
	}
	return m, nil
}

// cancelDrag drops an in-flight drag without touching the store. The app
// calls it whenever the track stops receiving the gesture.
func (m *activitiesModel) cancelDrag() {
	m.drag.Cancel()
	m.pressed = false
}

// hit finds the activity whose marker sits at the given panel-relative cell.
func (m activitiesModel) hit(col, row int) (int64, bool) {
	i := row - trackHeaderRows
	acts := m.sess.editor.Activities()
	if i < 0 || i >= len(acts) {
		return 0, false
	}
	marker := m.column(acts[i].Time)
	if col < marker-1 || col > marker+1 {
		return 0, false
	}
	return acts[i].ID, true
}

func (m activitiesModel) column(minutes int) int {
	return int(math.Round(m.mapper().TimeToOffset(minutes)))
}

func (m activitiesModel) showAddForm() (activitiesModel, tea.Cmd) {
	*m.formName, *m.formTime = m.sess.editor.Draft()
	w := m.sess.editor.Window()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Activity").
				Placeholder("Cake cutting").
				Value(m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return timeline.ErrEmptyName
					}
					return nil
				}),
			huh.NewInput().Title("Time (HH:MM)").
				Description(w.String()).
				Placeholder(timeline.FormatHHMM(w.Start)).
				Value(m.formTime).
				Validate(func(s string) error {
					if !timeline.ValidClock(s) {
						return timeline.ErrInvalidClock
					}
					if mins := timeline.ParseClock(s, -1); !w.Contains(mins) {
						return fmt.Errorf("pick a time between %s", w)
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) updateForm(msg tea.Msg) (activitiesModel, tea.Cmd) {
	ctx := m.sess.ctx

	// Escape keeps what was typed as the pending draft.
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			if err := m.sess.editor.SetDraft(ctx, *m.formName, *m.formTime); err != nil {
				return m, func() tea.Msg { return errStatus(err) }
			}
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if err := m.sess.editor.SetDraft(ctx, strings.TrimSpace(*m.formName), *m.formTime); err != nil {
			return m, func() tea.Msg { return errStatus(err) }
		}
		a, err := m.sess.editor.AddDraft(ctx)
		if err != nil && !errors.Is(err, timeline.ErrNotSaved) {
			return m, func() tea.Msg { return errStatus(err) }
		}
		m.cursor = a.ID
		m.sync()
		if err != nil {
			return m, func() tea.Msg { return errStatus(err) }
		}
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Added %s at %s", a.Name, timeline.FormatClock(a.Time))}
		}
	}

	return m, cmd
}

func (m activitiesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Activity")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if !m.sess.hydrated {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading schedule..."))
	}

	win := m.sess.editor.Window()
	extent := m.extent()

	var rows []string
	rows = append(rows, titleStyle.Render("Activities")+"  "+mutedStyle.Render(win.String()))
	rows = append(rows, "")

	startLabel := timeline.FormatClock(win.Start)
	endLabel := timeline.FormatClock(win.End)
	gap := max(extent+1-len(startLabel)-len(endLabel), 1)
	rows = append(rows, mutedStyle.Render(startLabel+strings.Repeat(" ", gap)+endLabel))
	rows = append(rows, trackStyle.Render("├"+strings.Repeat("─", max(extent-1, 0))+"┤"))

	acts := m.sess.editor.Activities()
	preview, dragging := m.drag.Preview()
	for _, a := range acts {
		t := a.Time
		style := markerStyle
		if dragging && preview.ID == a.ID {
			t = preview.Time
			style = dragMarkerStyle
		}
		rows = append(rows, m.renderRow(a, t, style))
	}

	if len(acts) == 0 {
		rows = append(rows, "", mutedStyle.Render("No activities yet. Press n to add one."))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: remove  ←/→: move  drag a marker with the mouse  esc: cancel drag"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderRow draws one activity's marker on its own row, with the label on
// whichever side of the marker has room.
func (m activitiesModel) renderRow(a timeline.Activity, minutes int, marker lipgloss.Style) string {
	col := m.column(minutes)
	label := fmt.Sprintf("%s %s", a.Name, timeline.FormatClock(minutes))

	textStyle := normalItemStyle
	if a.ID == m.cursor {
		textStyle = pillStyle
	}

	dot := marker.Render("●")
	if col+2+len(label) <= m.extent()+1 || col < len(label)+1 {
		return strings.Repeat(" ", col) + dot + " " + textStyle.Render(label)
	}
	pad := col - len(label) - 1
	return strings.Repeat(" ", pad) + textStyle.Render(label) + " " + dot
}
