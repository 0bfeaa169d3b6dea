package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

const (
	modeSignIn = "signin"
	modeSignUp = "signup"
)

type confirmModel struct {
	sess   *session
	width  int
	height int

	formActive bool
	form       *huh.Form
	submitting bool

	formMode     *string
	formUsername *string
	formPassword *string
	formMessage  *string
}

func newConfirmModel(s *session) confirmModel {
	mode, user, pass, message := modeSignUp, "", "", ""
	return confirmModel{
		sess:         s,
		formMode:     &mode,
		formUsername: &user,
		formPassword: &pass,
		formMessage:  &message,
	}
}

func (m *confirmModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case statusMsg:
		m.submitting = false
	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) && !m.submitting {
			return m.showForm()
		}
	}
	return m, nil
}

func (m confirmModel) signedIn() bool {
	_, ok := m.sess.auth.CurrentUser()
	return ok
}

func (m confirmModel) showForm() (confirmModel, tea.Cmd) {
	if !m.sess.hydrated {
		return m, func() tea.Msg { return statusMsg{text: "Still loading your draft", isError: true} }
	}
	if strings.TrimSpace(m.sess.draft.EventName) == "" {
		return m, func() tea.Msg { return errStatus(invite.ErrMissingName) }
	}
	*m.formPassword = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Host account").
				Options(
					huh.NewOption("Create an account", modeSignUp),
					huh.NewOption("Sign in", modeSignIn),
				).Value(m.formMode),
			huh.NewInput().Title("Username").
				Value(m.formUsername).
				Validate(func(s string) error {
					if auth.NormalizeUsername(s) == "" {
						return errors.New(auth.Message(auth.ErrMissingCredentials))
					}
					return nil
				}),
			huh.NewInput().Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(m.formPassword),
		).Title("Sign in to save").WithHideFunc(m.signedIn),
		huh.NewGroup(
			huh.NewText().Title("Message to guests").
				CharLimit(500).
				Value(m.formMessage),
		).Title("Message"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m confirmModel) updateForm(msg tea.Msg) (confirmModel, tea.Cmd) {
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
		m.submitting = true
		return m, m.submit(*m.formMode, *m.formUsername, *m.formPassword, *m.formMessage)
	}

	return m, cmd
}

// submit signs the host in when needed and saves the invitation.
func (m confirmModel) submit(mode, username, password, message string) tea.Cmd {
	s := m.sess
	d := s.draft
	acts := s.editor.Activities()
	return func() tea.Msg {
		if _, ok := s.auth.CurrentUser(); !ok {
			var err error
			if mode == modeSignIn {
				_, err = s.auth.SignIn(s.ctx, username, password)
			} else {
				_, err = s.auth.SignUp(s.ctx, username, password)
			}
			if err != nil {
				return statusMsg{text: auth.Message(err), isError: true}
			}
		}
		id, err := s.svc.Confirm(s.ctx, d, acts, strings.TrimSpace(message))
		if err != nil {
			return errStatus(err)
		}
		return confirmedMsg{id: id}
	}
}

func (m confirmModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("Save Invitation")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	d := m.sess.draft
	win := m.sess.editor.Window()

	var rows []string
	rows = append(rows, titleStyle.Render("Review"))
	rows = append(rows, "")
	rows = append(rows, detailRow("Name", d.EventName))
	rows = append(rows, detailRow("Party type", strings.Join(d.PartyTypes, ", ")))
	rows = append(rows, detailRow("Theme", strings.Join(d.Themes(), ", ")))
	rows = append(rows, detailRow("Date", d.Date))
	rows = append(rows, detailRow("Time", win.String()))
	rows = append(rows, detailRow("Location", d.Location))
	rows = append(rows, detailRow("Guests", fmt.Sprintf("%d", len(d.Invitees))))
	rows = append(rows, "")

	acts := m.sess.editor.Activities()
	rows = append(rows, titleStyle.Render(fmt.Sprintf("Schedule (%d)", len(acts))))
	if len(acts) == 0 {
		rows = append(rows, mutedStyle.Render("  No activities planned"))
	}
	for _, a := range acts {
		rows = append(rows, fmt.Sprintf("  %s  %s",
			highlightStyle.Render(fmt.Sprintf("%8s", timeline.FormatClock(a.Time))), a.Name))
	}

	rows = append(rows, "")
	switch {
	case m.submitting:
		rows = append(rows, warningStyle.Render("  Saving..."))
	case m.signedIn():
		u, _ := m.sess.auth.CurrentUser()
		rows = append(rows, successStyle.Render("  Signed in as "+u.Username))
		rows = append(rows, mutedStyle.Render("  enter: save invitation"))
	default:
		rows = append(rows, mutedStyle.Render("  enter: sign in and save invitation"))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
