package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

type profileLoadedMsg struct {
	user   *domain.User
	genres []domain.Genre
	err    error
}

type favoritesSavedMsg struct {
	user *domain.User
	err  error
}

// profileModel shows the signed-in user and edits their favorite genres.
type profileModel struct {
	client    *client.Client
	user      *domain.User
	genres    []domain.Genre
	selected  map[uuid.UUID]bool
	dirty     bool
	cursor    int
	loading   bool
	saving    bool
	err       error
	statusMsg string
	now       func() time.Time
	width     int
	height    int
}

func newProfileModel(c *client.Client) profileModel {
	return profileModel{client: c, loading: true, selected: map[uuid.UUID]bool{}, now: time.Now}
}

func (m profileModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		me, err := c.GetMe(ctx)
		if err != nil {
			return profileLoadedMsg{err: err}
		}
		page, err := c.ListGenres(ctx, client.PageQuery{Size: 100, Sort: "name,asc"})
		if err != nil {
			return profileLoadedMsg{user: me, err: err}
		}
		return profileLoadedMsg{user: me, genres: page.Content}
	}
}

func (m profileModel) resize(size tea.WindowSizeMsg) profileModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m profileModel) withUser(u *domain.User) profileModel {
	m.user = u
	m.selected = make(map[uuid.UUID]bool, len(u.FavoriteGenres))
	for _, g := range u.FavoriteGenres {
		m.selected[g.ID] = true
	}
	m.dirty = false
	return m
}

// selectedIDs returns the chosen genre IDs in list order.
func (m profileModel) selectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for _, g := range m.genres {
		if m.selected[g.ID] {
			ids = append(ids, g.ID.String())
		}
	}
	return ids
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.user != nil {
			m = m.withUser(msg.user)
		}
		m.genres = msg.genres
		if m.cursor >= len(m.genres) {
			m.cursor = 0
		}
		return m, nil

	case favoritesSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.statusMsg = "save failed: " + errorText(msg.err)
			return m, nil
		}
		m = m.withUser(msg.user)
		m.statusMsg = "favorites saved"
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch key := msg.String(); key {
		case " ", "space", "x":
			if m.cursor < len(m.genres) {
				id := m.genres[m.cursor].ID
				m.selected[id] = !m.selected[id]
				m.dirty = true
			}
		case "s":
			if m.saving || m.user == nil {
				return m, nil
			}
			m.saving = true
			c, ids := m.client, m.selectedIDs()
			return m, func() tea.Msg {
				u, err := c.UpdateFavoriteGenres(context.Background(), ids)
				return favoritesSavedMsg{user: u, err: err}
			}
		case "r":
			m.loading = true
			return m, m.Init()
		default:
			m.cursor = cursorMove(m.cursor, len(m.genres), key)
		}
	}
	return m, nil
}

// tokenStatus describes when the current access token expires.
func tokenStatus(expiry, now time.Time) string {
	if expiry.IsZero() {
		return "no expiry information"
	}
	d := expiry.Sub(now).Round(time.Minute)
	if d <= 0 {
		return "expired, renewed on the next request"
	}
	return "expires in " + strings.TrimSuffix(d.String(), "0s")
}

func (m profileModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("PROFILE") + "\n\n")

	switch {
	case m.loading && m.user == nil:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != nil && m.user == nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
		return b.String()
	}

	snap := m.client.Session().Snapshot()
	fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "name")), selectedStyle.Render(m.user.Name))
	fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "email")), normalStyle.Render(m.user.Email))
	fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "token")), metaStyle.Render(tokenStatus(snap.TokenExpiry(), m.now())))

	b.WriteString("\n  " + sectionHeaderStyle.Render("FAVORITE GENRES"))
	if m.dirty {
		b.WriteString(warnStyle.Render("  unsaved, s to save"))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
	}
	for i, g := range m.genres {
		box := metaStyle.Render("[ ]")
		if m.selected[g.ID] {
			box = starStyle.Render("[x]")
		}
		name := normalStyle.Render(g.Name)
		prefix := "    "
		if i == m.cursor {
			name = selectedStyle.Render(g.Name)
			prefix = "  " + accentStyle.Render(">") + " "
		}
		b.WriteString(prefix + box + " " + name + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n  " + okStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}
