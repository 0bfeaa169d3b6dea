package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/viva/internal/invite"
)

type detailsModel struct {
	sess   *session
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName     *string
	formParties  *[]string
	formThemes   *[]string
	formCustom   *string
	formLocation *string
}

func newDetailsModel(s *session) detailsModel {
	name, custom, location := "", "", ""
	var parties, themes []string
	return detailsModel{
		sess:         s,
		formName:     &name,
		formParties:  &parties,
		formThemes:   &themes,
		formCustom:   &custom,
		formLocation: &location,
	}
}

func (m *detailsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m detailsModel) update(msg tea.Msg) (detailsModel, tea.Cmd) {
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

func (m detailsModel) showForm() (detailsModel, tea.Cmd) {
	d := m.sess.draft
	*m.formName = d.EventName
	*m.formParties = append([]string(nil), d.PartyTypes...)
	*m.formThemes = append([]string(nil), d.ThemeTags...)
	*m.formCustom = d.CustomTheme
	*m.formLocation = d.Location

	var themeOptions []huh.Option[string]
	for _, g := range invite.ThemeGroups {
		for _, tag := range g.Tags {
			themeOptions = append(themeOptions, huh.NewOption(g.Name+" · "+tag, tag))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Event name").
				Placeholder(invite.NameSuggestions[0]).
				Suggestions(invite.NameSuggestions).
				CharLimit(invite.MaxNameLength).
				Value(m.formName),
			huh.NewInput().Title("Location").Value(m.formLocation),
		).Title("Event"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Party type").
				Options(huh.NewOptions(invite.PartyTypes...)...).
				Value(m.formParties),
		).Title("Occasion"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Vibe").
				Options(themeOptions...).
				Height(12).
				Value(m.formThemes),
			huh.NewInput().Title("Custom theme").Value(m.formCustom),
		).Title("Theme"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m detailsModel) updateForm(msg tea.Msg) (detailsModel, tea.Cmd) {
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
		d := &m.sess.draft
		d.EventName = strings.TrimSpace(*m.formName)
		d.Location = strings.TrimSpace(*m.formLocation)
		d.PartyTypes = append([]string(nil), *m.formParties...)
		d.ThemeTags = append([]string(nil), *m.formThemes...)
		d.CustomTheme = strings.TrimSpace(*m.formCustom)
		return m, m.sess.saveDraft()
	}

	return m, cmd
}

func (m detailsModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("Event Details")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	d := m.sess.draft
	var rows []string
	rows = append(rows, titleStyle.Render("Event Details"))
	rows = append(rows, "")
	rows = append(rows, detailRow("Name", d.EventName))
	rows = append(rows, detailRow("Location", d.Location))
	rows = append(rows, detailRow("Party type", strings.Join(d.PartyTypes, ", ")))
	rows = append(rows, detailRow("Theme", strings.Join(d.Themes(), ", ")))

	if hint := invite.ThemeHint(d.ThemeTags); hint != "" {
		rows = append(rows, "", warningStyle.Render("  "+hint))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit  tab: next step"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func detailRow(label, value string) string {
	v := highlightStyle.Render(value)
	if value == "" {
		v = mutedStyle.Render("not set")
	}
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(12).Render(label), v)
}
