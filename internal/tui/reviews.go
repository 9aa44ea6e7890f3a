package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/domain"
)

type myReviewsLoadedMsg struct {
	data *client.MyReviews
	err  error
}

type reviewSavedMsg struct{ err error }

type reviewDeletedMsg struct{ err error }

// reviewsModel lists the reviews of the signed-in user and the returned
// rentals still waiting for one.
type reviewsModel struct {
	client  *client.Client
	data    *client.MyReviews
	pending []domain.Rental
	cursor  int
	loading bool
	err     error

	formOpen   bool
	formTitle  string
	rentalID   string // set when creating
	reviewID   string // set when editing
	rating     textinput.Model
	comment    textinput.Model
	formFocus  int
	confirming bool
	statusMsg  string

	width  int
	height int
}

func newReviewsModel(c *client.Client) reviewsModel {
	return reviewsModel{client: c, loading: true}
}

func (m reviewsModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		email := ""
		if u := c.Session().Snapshot().User; u != nil {
			email = u.Email
		}
		data, err := c.MyReviews(context.Background(), email)
		return myReviewsLoadedMsg{data: data, err: err}
	}
}

func (m reviewsModel) resize(size tea.WindowSizeMsg) reviewsModel {
	m.width = size.Width
	m.height = size.Height
	return m
}

func (m reviewsModel) reviewCount() int {
	if m.data == nil {
		return 0
	}
	return len(m.data.Reviews)
}

func (m reviewsModel) itemCount() int {
	return m.reviewCount() + len(m.pending)
}

// selected returns the review or the pending rental under the cursor.
func (m reviewsModel) selected() (*domain.Review, *domain.Rental) {
	if m.cursor < m.reviewCount() {
		return &m.data.Reviews[m.cursor], nil
	}
	if i := m.cursor - m.reviewCount(); i < len(m.pending) {
		return nil, &m.pending[i]
	}
	return nil, nil
}

func (m reviewsModel) openForm(title string, rating int, comment string) (reviewsModel, tea.Cmd) {
	m.formOpen = true
	m.formTitle = title
	m.rating = newInput("1-5", 5)
	m.rating.CharLimit = 1
	m.comment = newInput("what did you think?", 50)
	if rating > 0 {
		m.rating.SetValue(strconv.Itoa(rating))
	}
	m.comment.SetValue(comment)
	m.formFocus = 0
	cmd := m.rating.Focus()
	return m, cmd
}

func (m reviewsModel) Update(msg tea.Msg) (reviewsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case myReviewsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		m.pending = nil
		if msg.data != nil {
			m.pending = msg.data.Pending()
		}
		if m.cursor >= m.itemCount() {
			m.cursor = 0
		}
		return m, nil

	case reviewSavedMsg:
		if msg.err != nil {
			m.statusMsg = "save failed: " + errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "review saved"
		m.loading = true
		return m, m.Init()

	case reviewDeletedMsg:
		if msg.err != nil {
			m.statusMsg = "delete failed: " + errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "review deleted"
		m.loading = true
		return m, m.Init()

	case tea.KeyMsg:
		if m.formOpen {
			return m.updateForm(msg)
		}
		if m.confirming {
			m.confirming = false
			if msg.String() != "y" {
				m.statusMsg = ""
				return m, nil
			}
			review, _ := m.selected()
			if review == nil {
				return m, nil
			}
			c, id := m.client, review.ID.String()
			return m, func() tea.Msg {
				return reviewDeletedMsg{err: c.DeleteReview(context.Background(), id)}
			}
		}

		m.statusMsg = ""
		switch key := msg.String(); key {
		case "n", "enter":
			if _, rental := m.selected(); rental != nil {
				m.rentalID, m.reviewID = rental.ID, ""
				return m.openForm("Review "+rental.VHS.Title, 0, "")
			}
		case "e":
			if review, _ := m.selected(); review != nil {
				m.rentalID, m.reviewID = "", review.ID.String()
				return m.openForm("Edit review of "+review.VHS.Title, int(math.Round(review.Rating)), review.Comment)
			}
		case "d":
			if review, _ := m.selected(); review != nil {
				m.confirming = true
				m.statusMsg = "delete review of " + review.VHS.Title + "? y to confirm"
			}
		case "r":
			m.loading = true
			return m, m.Init()
		default:
			m.cursor = cursorMove(m.cursor, m.itemCount(), key)
		}
	}
	return m, nil
}

func (m reviewsModel) updateForm(msg tea.KeyMsg) (reviewsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formOpen = false
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.formFocus = 1 - m.formFocus
		if m.formFocus == 0 {
			m.comment.Blur()
			cmd := m.rating.Focus()
			return m, cmd
		}
		m.rating.Blur()
		cmd := m.comment.Focus()
		return m, cmd
	case "enter":
		rating, err := strconv.Atoi(strings.TrimSpace(m.rating.Value()))
		if err != nil || rating < 1 || rating > 5 {
			m.statusMsg = "rating must be a number from 1 to 5"
			return m, nil
		}
		comment := strings.TrimSpace(m.comment.Value())
		m.formOpen = false
		m.statusMsg = ""
		return m, m.save(rating, comment)
	}

	var cmd tea.Cmd
	if m.formFocus == 0 {
		m.rating, cmd = m.rating.Update(msg)
	} else {
		m.comment, cmd = m.comment.Update(msg)
	}
	return m, cmd
}

func (m reviewsModel) save(rating int, comment string) tea.Cmd {
	c, rentalID, reviewID := m.client, m.rentalID, m.reviewID
	if reviewID != "" {
		return func() tea.Msg {
			err := c.UpdateReview(context.Background(), reviewID, domain.UpdateReviewRequest{Rating: rating, Comment: comment})
			return reviewSavedMsg{err: err}
		}
	}
	return func() tea.Msg {
		_, err := c.CreateReview(context.Background(), domain.CreateReviewRequest{RentalID: rentalID, Rating: rating, Comment: comment})
		return reviewSavedMsg{err: err}
	}
}

func (m reviewsModel) helpKeys(nav string) string {
	if m.formOpen {
		return helpEntry("tab", "next") + "  " + helpEntry("enter", "save") + "  " + helpEntry("esc", "cancel")
	}
	return nav + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("n", "review") + "  " + helpEntry("e", "edit") + "  " + helpEntry("d", "delete") + "  " + helpEntry("q", "quit")
}

func (m reviewsModel) View() string {
	var b strings.Builder

	if m.formOpen {
		fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(m.formTitle))
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "Rating")), m.rating.View())
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "Comment")), m.comment.View())
		if m.statusMsg != "" {
			b.WriteString("\n  " + warnStyle.Render(m.statusMsg) + "\n")
		}
		return b.String()
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("YOUR REVIEWS") + "\n\n")
	if m.statusMsg != "" {
		b.WriteString("  " + warnStyle.Render(m.statusMsg) + "\n\n")
	}
	switch {
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render(errorText(m.err)) + "\n")
		return b.String()
	case m.data == nil:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	row := func(i int, text string) {
		if i == m.cursor {
			b.WriteString("  " + accentStyle.Render(">") + " " + text + "\n")
		} else {
			b.WriteString("    " + text + "\n")
		}
	}

	if m.reviewCount() == 0 {
		b.WriteString("  " + dimStyle.Render("no reviews yet") + "\n")
	}
	for i, r := range m.data.Reviews {
		line := stars(r.Rating) + "  " + selectedStyle.Render(r.VHS.Title)
		if r.Comment != "" {
			line += "  " + dimStyle.Render(truncStr(r.Comment, max(10, m.width-40)))
		}
		row(i, line)
	}

	if len(m.pending) > 0 {
		b.WriteString("\n  " + sectionHeaderStyle.Render("WAITING FOR YOUR REVIEW") + "\n\n")
		for i, r := range m.pending {
			row(m.reviewCount()+i, normalStyle.Render(r.VHS.Title)+"  "+metaStyle.Render("returned "+r.ReturnDate.Local().Format("Jan 2")))
		}
	}
	if m.data.Skipped > 0 {
		fmt.Fprintf(&b, "\n  %s\n", warnStyle.Render(fmt.Sprintf("reviews for %d tapes could not be loaded", m.data.Skipped)))
	}
	return b.String()
}
