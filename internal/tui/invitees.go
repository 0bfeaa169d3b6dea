package tui

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/invite"
)

var errGuestEmail = errors.New("enter a valid email")

type inviteesModel struct {
	sess   *session
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form

	formName  *string
	formEmail *string
}

func newInviteesModel(s *session) inviteesModel {
	name, email := "", ""
	return inviteesModel{
		sess:      s,
		formName:  &name,
		formEmail: &email,
	}
}

func (m *inviteesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m inviteesModel) update(msg tea.Msg) (inviteesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	d := &m.sess.draft
	switch {
	case key.Matches(msgKey, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msgKey, keys.Down):
		if m.cursor < len(d.Invitees)-1 {
			m.cursor++
		}
	case key.Matches(msgKey, keys.New):
		return m.showForm()
	case key.Matches(msgKey, keys.Delete):
		if len(d.Invitees) == 0 {
			return m, nil
		}
		d.RemoveInvitee(m.cursor)
		m.cursor = min(m.cursor, max(len(d.Invitees)-1, 0))
		return m, m.sess.saveDraft()
	}
	return m, nil
}

func (m inviteesModel) showForm() (inviteesModel, tea.Cmd) {
	*m.formName = m.sess.draft.InviteeName
	*m.formEmail = m.sess.draft.InviteeEmail

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Guest name").
				Value(m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return invite.ErrMissingGuest
					}
					return nil
				}),
			huh.NewInput().Title("Email").
				Value(m.formEmail).
				Validate(func(s string) error {
					if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
						return errGuestEmail
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m inviteesModel) updateForm(msg tea.Msg) (inviteesModel, tea.Cmd) {
	d := &m.sess.draft

	// Escape keeps the half-typed guest for later.
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			d.InviteeName, d.InviteeEmail = *m.formName, *m.formEmail
			return m, m.sess.saveDraft()
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		d.InviteeName, d.InviteeEmail = *m.formName, *m.formEmail
		if !d.AddInvitee() {
			return m, func() tea.Msg { return statusMsg{text: "Please add both name and email", isError: true} }
		}
		m.cursor = len(d.Invitees) - 1
		return m, m.sess.saveDraft()
	}

	return m, cmd
}

func (m inviteesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("Add Guest")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	d := m.sess.draft
	title := titleStyle.Render(fmt.Sprintf("Invitees (%d)", len(d.Invitees)))

	if len(d.Invitees) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No guests yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, inv := range d.Invitees {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+d.InviteeLabel(i))+mutedStyle.Render("  "+inv.Email))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add guest  d: remove"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
