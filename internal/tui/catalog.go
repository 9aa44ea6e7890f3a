package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/internal/browser"
	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

// rentalPeriod is how long a tape rented from the detail screen is kept.
const rentalPeriod = 7 * 24 * time.Hour

type catalogLoadedMsg struct {
	page *domain.Page[domain.VHS]
	err  error
}

// openVHSMsg asks the App to show the detail screen for a tape.
type openVHSMsg struct {
	vhs domain.VHS
}

type catalogModel struct {
	client  *client.Client
	page    *domain.Page[domain.VHS]
	pageNum int
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func newCatalogModel(c *client.Client) catalogModel {
	return catalogModel{client: c, loading: true}
}

func (m catalogModel) load() tea.Cmd {
	c, n := m.client, m.pageNum
	return func() tea.Msg {
		page, err := c.ListVHS(context.Background(), client.PageQuery{Page: n, Size: pageSize, Sort: "title,asc"})
		return catalogLoadedMsg{page: page, err: err}
	}
}

func (m catalogModel) Init() tea.Cmd {
	return m.load()
}

func (m catalogModel) resize(size tea.WindowSizeMsg) catalogModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m catalogModel) tapes() []domain.VHS {
	if m.page == nil {
		return nil
	}
	return m.page.Content
}

func (m catalogModel) Update(msg tea.Msg) (catalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.page = msg.page
		}
		if m.cursor >= len(m.tapes()) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "enter":
			if tapes := m.tapes(); m.cursor < len(tapes) {
				v := tapes[m.cursor]
				return m, func() tea.Msg { return openVHSMsg{vhs: v} }
			}
		case "n":
			if m.page != nil && m.page.HasNext() {
				m.pageNum++
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "p":
			if m.page != nil && m.page.HasPrev() {
				m.pageNum--
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "r":
			m.loading = true
			return m, m.load()
		default:
			m.cursor = cursorMove(m.cursor, len(m.tapes()), key)
		}
	}
	return m, nil
}

func (m catalogModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("CATALOG"))
	if m.page != nil && m.page.TotalPages > 1 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  page %d/%d", m.page.Number+1, m.page.TotalPages)))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading && m.page == nil:
		b.WriteString("  " + dimStyle.Render("loading tapes...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n\n")
	}

	tapes := m.tapes()
	if len(tapes) == 0 && m.err == nil {
		b.WriteString("  " + dimStyle.Render("no tapes on the shelf") + "\n")
		return b.String()
	}

	titleWidth := max(20, m.width-52)
	for i, v := range tapes {
		title := fmt.Sprintf("%-*s", titleWidth, truncStr(v.Title, titleWidth))
		line := fmt.Sprintf("%s  %s  %s  %s",
			title,
			metaStyle.Render(fmt.Sprintf("%-12s", truncStr(v.Genre.Name, 12))),
			normalStyle.Render(fmt.Sprintf("%8s", money(v.RentalPrice))),
			StatusBadge(v.Status),
		)
		if i == m.cursor {
			b.WriteString("  " + accentStyle.Render(">") + " " + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString("    " + normalStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

type vhsLoadedMsg struct {
	vhs     *domain.VHS
	reviews []domain.Review
	err     error
}

type rentResultMsg struct {
	rental *domain.Rental
	err    error
}

type copyResultMsg struct{ err error }

// vhsModel is the detail screen of a single tape with its reviews.
type vhsModel struct {
	client    *client.Client
	vhs       domain.VHS
	reviews   []domain.Review
	loading   bool
	renting   bool
	err       error
	statusMsg string
	width     int
	height    int
}

func newVHSModel(c *client.Client, v domain.VHS) vhsModel {
	return vhsModel{client: c, vhs: v, loading: true}
}

func (m vhsModel) Init() tea.Cmd {
	c, id := m.client, m.vhs.ID.String()
	return func() tea.Msg {
		ctx := context.Background()
		v, err := c.GetVHS(ctx, id)
		if err != nil {
			return vhsLoadedMsg{err: err}
		}
		page, err := c.ListReviewsByVHS(ctx, id, client.PageQuery{Size: pageSize, Sort: "id,desc"})
		if err != nil {
			return vhsLoadedMsg{vhs: v, err: err}
		}
		return vhsLoadedMsg{vhs: v, reviews: page.Content}
	}
}

func (m vhsModel) resize(size tea.WindowSizeMsg) vhsModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m vhsModel) rent() tea.Cmd {
	c := m.client
	req := domain.NewCreateRentalRequest(m.vhs.ID.String(), time.Now().Add(rentalPeriod))
	return func() tea.Msg {
		r, err := c.CreateRental(context.Background(), req)
		return rentResultMsg{rental: r, err: err}
	}
}

func (m vhsModel) Update(msg tea.Msg) (vhsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case vhsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.vhs != nil {
			m.vhs = *msg.vhs
		}
		m.reviews = msg.reviews
		return m, nil

	case rentResultMsg:
		m.renting = false
		if msg.err != nil {
			m.statusMsg = "rent failed: " + errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "rented, " + formatDue(msg.rental.DueDate, time.Now())
		m.loading = true
		return m, m.Init()

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "c":
			id := m.vhs.ID.String()
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(id)}
			}
		case "o":
			if m.vhs.ImageURL == "" {
				m.statusMsg = "no cover image"
				return m, nil
			}
			if err := browser.Open(joinURL(m.client.BaseURL(), m.vhs.ImageURL)); err != nil {
				m.statusMsg = fmt.Sprintf("open failed: %v", err)
			}
		case "R":
			if !m.client.Session().Snapshot().IsAuthenticated {
				return m, func() tea.Msg { return loginRequiredMsg{} }
			}
			if m.renting {
				return m, nil
			}
			if !m.vhs.Rentable() {
				m.statusMsg = "this tape cannot be rented right now"
				return m, nil
			}
			m.renting = true
			return m, m.rent()
		}
	}
	return m, nil
}

func (m vhsModel) View() string {
	v := m.vhs
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n", titleStyle.Render(v.Title), StatusBadge(v.Status))

	year := ""
	if !v.ReleaseDate.IsZero() {
		year = v.ReleaseDate.Format("2006")
	}
	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(strings.Join(nonEmpty(v.Genre.Name, year, fmt.Sprintf("%d in stock", v.StockLevel)), " . ")))
	fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("price"), normalStyle.Render(money(v.RentalPrice)))
	if v.ImageURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("cover"), dimStyle.Render(joinURL(m.client.BaseURL(), v.ImageURL)))
	}
	fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("id"), metaStyle.Render(v.ID.String()))

	if m.statusMsg != "" {
		b.WriteString("\n  " + warnStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("REVIEWS") + "\n\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
	case len(m.reviews) == 0:
		b.WriteString("  " + dimStyle.Render("no reviews yet. rent it and be the first") + "\n")
	}
	for _, r := range m.reviews {
		fmt.Fprintf(&b, "  %s  %s\n", stars(r.Rating), metaStyle.Render(r.User.Email))
		if r.Comment != "" {
			fmt.Fprintf(&b, "    %s\n", normalStyle.Render(truncStr(r.Comment, max(20, m.width-6))))
		}
	}
	return b.String()
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
