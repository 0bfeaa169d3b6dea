package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

// watch holds the live RSVP subscription. It is shared by every copy of the
// host model.
type watch struct {
	updates chan rsvpMsg

	mu     sync.Mutex
	cancel func()
}

// replace installs a new subscription's cancel func, stopping the old one.
func (w *watch) replace(cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	w.cancel = cancel
}

// send keeps only the latest update queued.
func (w *watch) send(m rsvpMsg) {
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- m:
	default:
	}
}

type hostModel struct {
	sess   *session
	width  int
	height int

	id        string
	inv       invite.Invitation
	loaded    bool
	summary   invite.Summary
	responses []invite.Response
	watch     *watch

	chart barchart.Model

	formActive bool
	form       *huh.Form

	formGuest     *string
	formAttending *string
	formBringing  *string
}

func newHostModel(s *session) hostModel {
	guest, attending, bringing := "", invite.AttendingYes, "0"
	return hostModel{
		sess:          s,
		watch:         &watch{updates: make(chan rsvpMsg, 1)},
		chart:         barchart.New(40, 10),
		formGuest:     &guest,
		formAttending: &attending,
		formBringing:  &bringing,
	}
}

func (h *hostModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
	h.buildChart()
}

// open loads the invitation and starts watching its responses.
func (h hostModel) open(id string) tea.Cmd {
	s := h.sess
	w := h.watch
	return func() tea.Msg {
		inv, err := s.svc.Get(s.ctx, id)
		if err != nil {
			return errStatus(err)
		}
		cancel, err := s.svc.WatchRSVPs(s.ctx, id, func(sum invite.Summary, rs []invite.Response) {
			w.send(rsvpMsg{summary: sum, responses: rs})
		})
		if err != nil {
			return errStatus(err)
		}
		w.replace(cancel)
		return hostLoadedMsg{inv: inv}
	}
}

func (h hostModel) waitForRSVP() tea.Cmd {
	ch := h.watch.updates
	return func() tea.Msg { return <-ch }
}

func (h hostModel) stop() {
	h.watch.replace(nil)
}

func (h hostModel) update(msg tea.Msg) (hostModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case hostLoadedMsg:
		h.inv = msg.inv
		h.loaded = true
		return h, h.waitForRSVP()

	case rsvpMsg:
		h.summary = msg.summary
		h.responses = msg.responses
		h.buildChart()
		return h, h.waitForRSVP()

	case tea.KeyMsg:
		if key.Matches(msg, keys.New) && h.loaded {
			return h.showForm()
		}
		if key.Matches(msg, keys.Copy) && h.loaded {
			return h, h.copyInvite()
		}
	}
	return h, nil
}

func (h hostModel) showForm() (hostModel, tea.Cmd) {
	*h.formGuest = ""
	*h.formAttending = invite.AttendingYes
	*h.formBringing = "0"

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Guest").Value(h.formGuest).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return invite.ErrMissingGuest
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Attending").
				Options(
					huh.NewOption("Yes", invite.AttendingYes),
					huh.NewOption("Maybe", invite.AttendingMaybe),
					huh.NewOption("No", invite.AttendingNo),
				).Value(h.formAttending),
			huh.NewInput().Title("Bringing").Value(h.formBringing).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return fmt.Errorf("enter a number of extra guests")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h hostModel) updateForm(msg tea.Msg) (hostModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		bringing, _ := strconv.Atoi(strings.TrimSpace(*h.formBringing))
		r := invite.Response{Guest: *h.formGuest, Attending: *h.formAttending, Bringing: bringing}
		return h, h.respond(r)
	}

	return h, cmd
}

func (h hostModel) respond(r invite.Response) tea.Cmd {
	s := h.sess
	id := h.id
	return func() tea.Msg {
		if _, err := s.svc.Respond(s.ctx, id, r); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Recorded RSVP for " + strings.TrimSpace(r.Guest)}
	}
}

// inviteLine is what a host shares with guests.
func inviteLine(id string) string {
	return "viva show " + id
}

func (h hostModel) copyInvite() tea.Cmd {
	s := h.sess
	line := inviteLine(h.id)
	return func() tea.Msg {
		if err := s.copy(line); err != nil {
			s.log.Warn("clipboard write failed", "err", err)
			return statusMsg{text: "Couldn't copy, share this instead: " + line, isError: true}
		}
		return statusMsg{text: "Copied invite: " + line}
	}
}

func (h *hostModel) buildChart() {
	chartWidth := max(h.width-8, 20)
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	bar := func(label string, n int, c lipgloss.Color) barchart.BarData {
		return barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: float64(n),
				Style: lipgloss.NewStyle().Foreground(c),
			}},
		}
	}
	h.chart.PushAll([]barchart.BarData{
		bar("Going", h.summary.Going, colorSuccess),
		bar("Maybe", h.summary.Maybe, colorWarning),
		bar("Declined", h.summary.Declined, colorError),
		bar("Waiting", h.summary.NoResponse, colorSubtle),
	})
	h.chart.Draw()
}

func (h hostModel) view() string {
	w := h.width - 4
	if h.formActive && h.form != nil {
		title := titleStyle.Render("Record RSVP")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View()),
		)
	}
	if !h.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading invitation " + h.id + "..."))
	}

	inv := h.inv
	win := inv.Window(h.sess.defaultWindow())

	header := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom,
			titleStyle.Render(inv.EventName), "  ", mutedStyle.Render(fmt.Sprintf("%s  %s", inv.Date, win)),
		),
		mutedStyle.Render("Share: ")+highlightStyle.Render(inviteLine(inv.ID)),
	)

	totals := fmt.Sprintf("  %s  %s  %s  %s   %s",
		successStyle.Render(fmt.Sprintf("%d going", h.summary.Going)),
		warningStyle.Render(fmt.Sprintf("%d maybe", h.summary.Maybe)),
		errorStyle.Render(fmt.Sprintf("%d declined", h.summary.Declined)),
		mutedStyle.Render(fmt.Sprintf("%d waiting", h.summary.NoResponse)),
		highlightStyle.Render(fmt.Sprintf("headcount %d", h.summary.Headcount)),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", totals, "",
			h.renderResponses(w), "",
			h.renderSchedule(win),
			"", mutedStyle.Render("  n: record RSVP  c: copy invite  ctrl+e: export  q: quit"),
		),
	)
}

func (h hostModel) renderResponses(w int) string {
	if len(h.responses) == 0 {
		return mutedStyle.Render("  No responses yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-10s %8s", "Guest", "Attending", "Bringing")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	for _, r := range h.responses {
		rows = append(rows, fmt.Sprintf("  %-24s %-10s %8d", r.Guest, r.Attending, r.Bringing))
	}
	return strings.Join(rows, "\n")
}

func (h hostModel) renderSchedule(win timeline.Window) string {
	acts := h.inv.Schedule(win)
	if len(acts) == 0 {
		return mutedStyle.Render("  No activities planned")
	}
	rows := []string{titleStyle.Render("Schedule")}
	for _, a := range acts {
		rows = append(rows, fmt.Sprintf("  %s  %s",
			highlightStyle.Render(fmt.Sprintf("%8s", timeline.FormatClock(a.Time))), a.Name))
	}
	return strings.Join(rows, "\n")
}
