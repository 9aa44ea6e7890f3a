package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

type genresLoadedMsg struct {
	genres []domain.Genre
	err    error
}

type genreCreatedMsg struct {
	genre *domain.Genre
	err   error
}

type genresModel struct {
	client    *client.Client
	genres    []domain.Genre
	cursor    int
	loading   bool
	err       error
	creating  bool
	input     textinput.Model
	statusMsg string
	width     int
	height    int
}

func newGenresModel(c *client.Client) genresModel {
	return genresModel{client: c, loading: true, input: newInput("genre name", 30)}
}

func (m genresModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		page, err := c.ListGenres(context.Background(), client.PageQuery{Size: 100, Sort: "name,asc"})
		if err != nil {
			return genresLoadedMsg{err: err}
		}
		return genresLoadedMsg{genres: page.Content}
	}
}

func (m genresModel) resize(size tea.WindowSizeMsg) genresModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m genresModel) Update(msg tea.Msg) (genresModel, tea.Cmd) {
	switch msg := msg.(type) {
	case genresLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.genres = msg.genres
		if m.cursor >= len(m.genres) {
			m.cursor = 0
		}
		return m, nil

	case genreCreatedMsg:
		if msg.err != nil {
			m.statusMsg = "create failed: " + errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "created " + msg.genre.Name
		return m, m.Init()

	case tea.KeyMsg:
		if m.creating {
			return m.updateForm(msg)
		}
		m.statusMsg = ""
		switch key := msg.String(); key {
		case "n":
			if !m.client.Session().Snapshot().IsAuthenticated {
				return m, func() tea.Msg { return loginRequiredMsg{} }
			}
			m.creating = true
			m.input.Reset()
			cmd := m.input.Focus()
			return m, cmd
		case "r":
			m.loading = true
			return m, m.Init()
		default:
			m.cursor = cursorMove(m.cursor, len(m.genres), key)
		}
	}
	return m, nil
}

func (m genresModel) updateForm(msg tea.KeyMsg) (genresModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.creating = false
		m.input.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.statusMsg = "name is required"
			return m, nil
		}
		m.creating = false
		m.input.Blur()
		c := m.client
		return m, func() tea.Msg {
			g, err := c.CreateGenre(context.Background(), name)
			return genreCreatedMsg{genre: g, err: err}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m genresModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("GENRES") + "\n\n")

	if m.creating {
		b.WriteString("  " + m.input.View() + "\n\n")
	}
	if m.statusMsg != "" {
		b.WriteString("  " + warnStyle.Render(m.statusMsg) + "\n\n")
	}

	switch {
	case m.loading && m.genres == nil:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
		return b.String()
	case len(m.genres) == 0:
		b.WriteString("  " + dimStyle.Render("no genres yet") + "\n")
		return b.String()
	}

	var user *domain.User
	if snap := m.client.Session().Snapshot(); snap.User != nil {
		user = snap.User
	}
	for i, g := range m.genres {
		name := g.Name
		if user != nil && user.HasFavorite(g.ID) {
			name += " " + starStyle.Render("★")
		}
		if i == m.cursor {
			b.WriteString("  " + accentStyle.Render(">") + " " + selectedStyle.Render(name) + "\n")
		} else {
			b.WriteString("    " + normalStyle.Render(name) + "\n")
		}
	}
	return b.String()
}
