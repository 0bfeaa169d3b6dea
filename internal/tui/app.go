package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/config"
	"github.com/sadopc/viva/internal/export"
	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/logging"
	"github.com/sadopc/viva/internal/timeline"
)

// Deps wires the app to its services.
type Deps struct {
	Config  *config.Config
	Editor  *timeline.Editor
	Drafts  *invite.DraftStore
	Service *invite.Service
	Auth    *auth.Provider
	Log     *slog.Logger

	// HostInvite opens the RSVP view for an existing invitation instead of
	// the wizard.
	HostInvite string

	// ExportDir is where exports are written; defaults to the home directory.
	ExportDir string

	// Clipboard receives copied invite links; defaults to the system clipboard.
	Clipboard func(string) error
}

// session is the state every view shares. Views hold a pointer so edits
// survive the value copies bubbletea makes.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	editor *timeline.Editor
	drafts *invite.DraftStore
	svc    *invite.Service
	auth   *auth.Provider
	log    *slog.Logger
	copy   func(string) error

	draft    invite.Draft
	hydrated bool
}

func (s *session) defaultWindow() timeline.ClockPair {
	if s.cfg == nil {
		return timeline.ClockPair{Start: timeline.DefaultStart, End: timeline.DefaultEnd}
	}
	return s.cfg.DefaultWindow()
}

func (s *session) snapStep() int {
	if s.cfg == nil || s.cfg.SnapStep <= 0 {
		return timeline.DefaultStep
	}
	return s.cfg.SnapStep
}

// window resolves the event window from the draft and the configured default.
func (s *session) window() timeline.Window {
	return timeline.ResolveWindow(timeline.ClockPair{}, s.draft.Clocks(), s.defaultWindow())
}

// saveDraft persists a copy of the current draft.
func (s *session) saveDraft() tea.Cmd {
	d := s.draft
	return func() tea.Msg {
		if err := s.drafts.Save(s.ctx, d); err != nil {
			s.log.Error("draft save failed", "err", err)
			return statusMsg{text: "Couldn't save draft, try again", isError: true}
		}
		return draftSavedMsg{draft: d}
	}
}

// App is the root Bubble Tea model.
type App struct {
	sess   *session
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	details    detailsModel
	schedule   scheduleModel
	activities activitiesModel
	invitees   inviteesModel
	confirm    confirmModel
	host       hostModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	sess := &session{
		ctx:    context.Background(),
		cfg:    d.Config,
		editor: d.Editor,
		drafts: d.Drafts,
		svc:    d.Service,
		auth:   d.Auth,
		log:    logging.OrDiscard(d.Log),
		copy:   d.Clipboard,
	}
	if sess.copy == nil {
		sess.copy = clipboard.WriteAll
	}
	a := App{
		sess:       sess,
		activeView: viewDetails,
		exportDir:  d.ExportDir,
		details:    newDetailsModel(sess),
		schedule:   newScheduleModel(sess),
		activities: newActivitiesModel(sess),
		invitees:   newInviteesModel(sess),
		confirm:    newConfirmModel(sess),
		host:       newHostModel(sess),
		help:       h,
	}
	if d.HostInvite != "" {
		a.activeView = viewHost
		a.host.id = d.HostInvite
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.activeView == viewHost {
		return a.host.open(a.host.id)
	}
	return a.hydrate()
}

// hydrate reads the stored draft and timeline snapshot off the UI loop.
func (a App) hydrate() tea.Cmd {
	s := a.sess
	return func() tea.Msg {
		d := s.drafts.Load(s.ctx)
		snap, ok := s.editor.Load(s.ctx)
		return hydratedMsg{draft: d, snap: snap, ok: ok}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		headerHeight := lipgloss.Height(a.renderHeader())
		contentHeight := a.height - headerHeight - 2
		a.details.setSize(a.width, contentHeight)
		a.schedule.setSize(a.width, contentHeight)
		a.activities.setSize(a.width, contentHeight)
		a.activities.setOrigin(0, headerHeight)
		a.invitees.setSize(a.width, contentHeight)
		a.confirm.setSize(a.width, contentHeight)
		a.host.setSize(a.width, contentHeight)
		return a, nil

	case hydratedMsg:
		// The window must be in place before the snapshot is applied so
		// restored times are clamped into it.
		a.sess.draft = msg.draft
		if err := a.sess.editor.SetWindow(a.sess.ctx, a.sess.window()); err != nil {
			a.sess.log.Warn("window update failed", "err", err)
		}
		a.sess.editor.Apply(msg.snap, msg.ok)
		a.sess.hydrated = true
		a.activities.sync()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.activities.cancelDrag()
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.shutdown()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		}
		if a.activeView != viewHost {
			switch {
			case key.Matches(msg, keys.Reset):
				cmd := a.startOver()
				return a, cmd
			case key.Matches(msg, keys.Tab1):
				return a.switchTo(viewDetails)
			case key.Matches(msg, keys.Tab2):
				return a.switchTo(viewTime)
			case key.Matches(msg, keys.Tab3):
				return a.switchTo(viewActivities)
			case key.Matches(msg, keys.Tab4):
				return a.switchTo(viewInvitees)
			case key.Matches(msg, keys.Tab5):
				return a.switchTo(viewConfirm)
			case key.Matches(msg, keys.Tab):
				return a.switchTo((a.activeView + 1) % wizardSteps)
			case key.Matches(msg, keys.ShiftTab):
				return a.switchTo((a.activeView + wizardSteps - 1) % wizardSteps)
			}
		}

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		a.confirm.submitting = false
		return a, nil

	case draftSavedMsg:
		a.statusError = false
		a.status = "Draft saved"
		return a, nil

	case confirmedMsg:
		a.activities.cancelDrag()
		if err := a.sess.editor.Reset(a.sess.ctx); err != nil {
			a.sess.log.Warn("timeline reset failed", "err", err)
		}
		a.sess.draft = invite.Draft{}
		a.activities.sync()
		a.status = "Invitation created: " + msg.id
		a.statusError = false
		a.activeView = viewHost
		a.host.id = msg.id
		return a, a.host.open(msg.id)

	case hostLoadedMsg, rsvpMsg:
		var cmd tea.Cmd
		a.host, cmd = a.host.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	if v != a.activeView {
		a.activities.cancelDrag()
	}
	a.activeView = v
	if v == viewActivities {
		a.activities.sync()
	}
	return a, nil
}

// startOver discards the draft and the timeline.
func (a *App) startOver() tea.Cmd {
	s := a.sess
	a.activities.cancelDrag()
	s.draft = invite.Draft{}
	if err := s.editor.Reset(s.ctx); err != nil {
		a.status, a.statusError = err.Error(), true
	}
	if err := s.editor.SetWindow(s.ctx, s.window()); err != nil {
		s.log.Warn("window update failed", "err", err)
	}
	a.activities.sync()
	a.activeView = viewDetails
	return func() tea.Msg {
		if err := s.drafts.Clear(s.ctx); err != nil {
			return errStatus(err)
		}
		return statusMsg{text: "Started a new invitation"}
	}
}

func (a App) shutdown() {
	a.host.stop()
	a.sess.editor.Close()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDetails:
		a.details, cmd = a.details.update(msg)
	case viewTime:
		a.schedule, cmd = a.schedule.update(msg)
		a.activities.sync()
	case viewActivities:
		a.activities, cmd = a.activities.update(msg)
	case viewInvitees:
		a.invitees, cmd = a.invitees.update(msg)
	case viewConfirm:
		a.confirm, cmd = a.confirm.update(msg)
	case viewHost:
		a.host, cmd = a.host.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDetails:
		return a.details.formActive
	case viewTime:
		return a.schedule.formActive
	case viewActivities:
		return a.activities.formActive
	case viewInvitees:
		return a.invitees.formActive
	case viewConfirm:
		return a.confirm.formActive
	case viewHost:
		return a.host.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDetails:
		content = a.details.view()
	case viewTime:
		content = a.schedule.view()
	case viewActivities:
		content = a.activities.view()
	case viewInvitees:
		content = a.invitees.view()
	case viewConfirm:
		content = a.confirm.view()
	case viewHost:
		content = a.host.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	if a.activeView == viewHost {
		tabs = append(tabs, activeTabStyle.Render(viewNames[viewHost]))
	} else {
		for i := range wizardSteps {
			name := fmt.Sprintf("%d %s", i+1, viewNames[i])
			switch {
			case viewState(i) == a.activeView:
				tabs = append(tabs, activeTabStyle.Render(name))
			case viewState(i) < a.activeView:
				tabs = append(tabs, doneTabStyle.Render(name))
			default:
				tabs = append(tabs, inactiveTabStyle.Render(name))
			}
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("viva")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Drag indicator in footer
	dragInfo := ""
	if p, ok := a.activities.drag.Preview(); ok {
		dragInfo = warningStyle.Render(" ↔ " + timeline.FormatClock(p.Time))
	}

	left := footerStyle.Render(helpView)
	right := dragInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON", "iCalendar"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Schedule")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportTarget is the confirmed invitation in host mode and a preview of the
// draft otherwise.
func (a App) exportTarget() invite.Invitation {
	if a.activeView == viewHost && a.host.loaded {
		return a.host.inv
	}
	return a.sess.draft.Invitation(a.sess.editor.Activities())
}

func (a App) doExport(format int) tea.Cmd {
	inv := a.exportTarget()
	def := a.sess.defaultWindow()
	dir := a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return errStatus(fmt.Errorf("export: %w", err))
			}
			dir = home
		}
		base := filepath.Join(dir, exportBaseName(inv))

		var path string
		switch format {
		case 0:
			path = base + ".csv"
			if err := export.ToCSV(inv, def, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		case 1:
			path = base + ".json"
			if err := export.ToJSON(inv, def, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		default:
			path = base + ".ics"
			if err := export.ToICS(inv, def, time.Local, path); err != nil {
				if errors.Is(err, export.ErrNoDate) {
					return statusMsg{text: "Pick a date before exporting a calendar", isError: true}
				}
				return statusMsg{text: fmt.Sprintf("iCalendar error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

func exportBaseName(inv invite.Invitation) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(inv.EventName))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "invitation"
	}
	return fmt.Sprintf("viva-%s-%s", slug, time.Now().Format("2006-01-02"))
}
