package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/timeline"
)

const dateLayout = "2006-01-02"

var errBadDate = errors.New("date must be YYYY-MM-DD")

type scheduleModel struct {
	sess   *session
	width  int
	height int

	formActive bool
	form       *huh.Form

	formDate  *string
	formStart *string
	formEnd   *string
}

func newScheduleModel(s *session) scheduleModel {
	date, start, end := "", "", ""
	return scheduleModel{
		sess:      s,
		formDate:  &date,
		formStart: &start,
		formEnd:   &end,
	}
}

func (m *scheduleModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Edit) || key.Matches(msg, keys.New) {
			return m.showForm()
		}
	}
	return m, nil
}

func validClockOrEmpty(s string) error {
	if strings.TrimSpace(s) == "" || timeline.ValidClock(s) {
		return nil
	}
	return timeline.ErrInvalidClock
}

func (m scheduleModel) showForm() (scheduleModel, tea.Cmd) {
	d := m.sess.draft
	*m.formDate = d.Date
	*m.formStart = d.StartTime
	*m.formEnd = d.EndTime
	def := m.sess.defaultWindow()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").
				Placeholder(time.Now().Format(dateLayout)).
				Value(m.formDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
						return errBadDate
					}
					return nil
				}),
			huh.NewInput().Title("Start time (HH:MM)").
				Placeholder(def.Start).
				Value(m.formStart).
				Validate(validClockOrEmpty),
			huh.NewInput().Title("End time (HH:MM)").
				Placeholder(def.End).
				Value(m.formEnd).
				Validate(validClockOrEmpty),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.apply(*m.formDate, *m.formStart, *m.formEnd)
	}

	return m, cmd
}

// apply stores the date and times and moves the timeline onto the newly
// resolved window.
func (m scheduleModel) apply(date, start, end string) tea.Cmd {
	s := m.sess
	s.draft.Date = strings.TrimSpace(date)
	s.draft.StartTime = strings.TrimSpace(start)
	s.draft.EndTime = strings.TrimSpace(end)

	w := s.window()
	if err := s.editor.SetWindow(s.ctx, w); err != nil {
		return tea.Batch(s.saveDraft(), func() tea.Msg { return errStatus(err) })
	}
	return s.saveDraft()
}

func (m scheduleModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("Date & Time")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	d := m.sess.draft
	win := m.sess.editor.Window()

	date := mutedStyle.Render("not set")
	if d.Date != "" {
		date = highlightStyle.Render(d.Date)
		if t, err := time.Parse(dateLayout, d.Date); err == nil {
			date = highlightStyle.Render(t.Format("Monday, January 2, 2006"))
		}
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Date & Time"))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(12).Render("Date"), date))
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(12).Render("Starts"), clockLabel(d.StartTime, win.Start)))
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(12).Render("Ends"), clockLabel(d.EndTime, win.End)))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  Activities are kept between %s (%s).", win, durationLabel(win.Duration()))))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// clockLabel shows the chosen time, or the resolved one marked as a default.
func clockLabel(set string, resolved int) string {
	if set != "" && timeline.ValidClock(set) {
		return highlightStyle.Render(timeline.FormatClock(resolved))
	}
	return mutedStyle.Render(timeline.FormatClock(resolved) + " (default)")
}

func durationLabel(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
