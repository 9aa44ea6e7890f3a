package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

// rentalHistorySize bounds how many rentals are fetched for the rentals screen.
const rentalHistorySize = 100

type rentalsLoadedMsg struct {
	rentals []domain.Rental
	err     error
}

type finishResultMsg struct {
	rental *domain.Rental
	err    error
}

type rentalsModel struct {
	client    *client.Client
	rentals   []domain.Rental
	cursor    int
	loading   bool
	err       error
	statusMsg string
	now       func() time.Time
	width     int
	height    int
}

func newRentalsModel(c *client.Client) rentalsModel {
	return rentalsModel{client: c, loading: true, now: time.Now}
}

func (m rentalsModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		snap := c.Session().Snapshot()
		page, err := c.ListRentals(context.Background(), client.PageQuery{Size: rentalHistorySize, Sort: "rentalDate,desc"})
		if err != nil {
			return rentalsLoadedMsg{err: err}
		}
		return rentalsLoadedMsg{rentals: ownRentals(page.Content, snap.User)}
	}
}

// ownRentals keeps the rentals of u. Without a profile nothing is filtered.
func ownRentals(rentals []domain.Rental, u *domain.User) []domain.Rental {
	if u == nil || u.Email == "" {
		return rentals
	}
	own := make([]domain.Rental, 0, len(rentals))
	for _, r := range rentals {
		if strings.EqualFold(r.User.Email, u.Email) {
			own = append(own, r)
		}
	}
	return own
}

func (m rentalsModel) resize(size tea.WindowSizeMsg) rentalsModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m rentalsModel) Update(msg tea.Msg) (rentalsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case rentalsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rentals = msg.rentals
		if m.cursor >= len(m.rentals) {
			m.cursor = 0
		}
		return m, nil

	case finishResultMsg:
		if msg.err != nil {
			m.statusMsg = "return failed: " + errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "returned " + msg.rental.VHS.Title
		if msg.rental.Price != nil {
			m.statusMsg += ", charged " + money(*msg.rental.Price)
		}
		return m, m.Init()

	case tea.KeyMsg:
		m.statusMsg = ""
		switch key := msg.String(); key {
		case "f":
			if m.cursor >= len(m.rentals) {
				return m, nil
			}
			r := m.rentals[m.cursor]
			if r.Returned() {
				m.statusMsg = "already returned"
				return m, nil
			}
			c := m.client
			return m, func() tea.Msg {
				finished, err := c.FinishRental(context.Background(), r.ID)
				return finishResultMsg{rental: finished, err: err}
			}
		case "r":
			m.loading = true
			return m, m.Init()
		default:
			m.cursor = cursorMove(m.cursor, len(m.rentals), key)
		}
	}
	return m, nil
}

func (m rentalsModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("YOUR RENTALS") + "\n\n")

	if m.statusMsg != "" {
		b.WriteString("  " + warnStyle.Render(m.statusMsg) + "\n\n")
	}
	switch {
	case m.loading && m.rentals == nil:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
		return b.String()
	case len(m.rentals) == 0:
		b.WriteString("  " + dimStyle.Render("nothing rented yet. press 1 to browse the catalog") + "\n")
		return b.String()
	}

	now := m.now()
	titleWidth := max(20, m.width-40)
	for i, r := range m.rentals {
		var state string
		switch {
		case r.Returned():
			state = dimStyle.Render("returned " + r.ReturnDate.Local().Format("Jan 2"))
			if r.Price != nil {
				state += dimStyle.Render(" . " + money(*r.Price))
			}
		case r.Overdue(now):
			state = errorStyle.Render(formatDue(r.DueDate, now))
		default:
			state = okStyle.Render(formatDue(r.DueDate, now))
		}
		title := fmt.Sprintf("%-*s", titleWidth, truncStr(r.VHS.Title, titleWidth))
		if i == m.cursor {
			b.WriteString("  " + accentStyle.Render(">") + " " + selectedStyle.Render(title) + "  " + state + "\n")
		} else {
			b.WriteString("    " + normalStyle.Render(title) + "  " + state + "\n")
		}
	}
	return b.String()
}
