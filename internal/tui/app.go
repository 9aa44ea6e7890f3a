package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vhsrental/vhsrental/internal/browser"
	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/session"
)

// sessionChangedMsg is delivered after every session mutation, including
// ones made in the background by a failed token refresh.
type sessionChangedMsg struct{}

// loginRequiredMsg asks the App to send an anonymous user to the login
// screen and bring them back to the current screen afterwards.
type loginRequiredMsg struct{}

type loggedOutMsg struct{ err error }

// App is the root Bubbletea model.
type App struct {
	client  *client.Client
	store   *session.Store
	snap    session.Snapshot
	changes chan struct{}
	unsub   func()

	screen    screen
	returnTo  screen
	hasReturn bool

	auth    authModel
	catalog catalogModel
	detail  vhsModel
	genres  genresModel
	rentals rentalsModel
	reviews reviewsModel
	profile profileModel

	help       []helpItem
	helpOpen   bool
	helpCursor int
	flash      string
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI for the session held by c. Call Close when the
// program exits.
func NewApp(c *client.Client) App {
	store := c.Session()
	changes := make(chan struct{}, 1)
	unsub := store.Subscribe(func(session.Snapshot) {
		// Coalesced: the App re-reads the snapshot when it handles the message.
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	return App{
		client:  c,
		store:   store,
		snap:    store.Snapshot(),
		changes: changes,
		unsub:   unsub,
		screen:  screenCatalog,
		auth:    newAuthModel(c, false),
		catalog: newCatalogModel(c),
		genres:  newGenresModel(c),
		rentals: newRentalsModel(c),
		reviews: newReviewsModel(c),
		profile: newProfileModel(c),
		help:    helpItems(c.BaseURL()),
	}
}

// Close stops listening for session changes.
func (a App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

func waitForSession(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.catalog.Init(), shimmerTickCmd(), waitForSession(a.changes))
}

func (a App) logout() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		return loggedOutMsg{err: c.Logout(context.Background())}
	}
}

// navigate switches to the requested screen through the route guard.
func (a App) navigate(to screen) (App, tea.Cmd) {
	target, redirected := guard(a.snap, to)
	if redirected {
		a.returnTo = to
		a.hasReturn = true
	}
	a.screen = target
	cmd := a.enter(target)
	return a, cmd
}

// enter prepares a screen that was just switched to and returns its load command.
func (a *App) enter(s screen) tea.Cmd {
	switch s {
	case screenLogin, screenRegister:
		a.auth = newAuthModel(a.client, s == screenRegister)
		a.auth = a.auth.resize(a.bodySize())
		return a.auth.Init()
	case screenCatalog:
		return a.catalog.Init()
	case screenVHS:
		return a.detail.Init()
	case screenGenres:
		return a.genres.Init()
	case screenRentals:
		return a.rentals.Init()
	case screenReviews:
		return a.reviews.Init()
	case screenProfile:
		a.profile = newProfileModel(a.client)
		a.profile = a.profile.resize(a.bodySize())
		return a.profile.Init()
	}
	return nil
}

// afterSignIn continues to the screen the user was sent away from.
func (a App) afterSignIn() (App, tea.Cmd) {
	next := screenCatalog
	if a.hasReturn {
		next = a.returnTo
	}
	a.hasReturn = false
	return a.navigate(next)
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := a.bodySize()
		a.auth = a.auth.resize(body)
		a.catalog = a.catalog.resize(body)
		a.detail = a.detail.resize(body)
		a.genres = a.genres.resize(body)
		a.rentals = a.rentals.resize(body)
		a.reviews = a.reviews.resize(body)
		a.profile = a.profile.resize(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionChangedMsg:
		a.snap = a.store.Snapshot()
		wait := waitForSession(a.changes)
		if _, redirected := guard(a.snap, a.screen); redirected {
			a.flash = "session ended, sign in again"
			var cmd tea.Cmd
			a, cmd = a.navigate(a.screen)
			return a, tea.Batch(wait, cmd)
		}
		return a, wait

	case loginRequiredMsg:
		a.returnTo = a.screen
		a.hasReturn = true
		a.screen = screenLogin
		cmd := a.enter(screenLogin)
		return a, cmd

	case authDoneMsg:
		if msg.err != nil {
			a.auth, _ = a.auth.Update(msg)
			return a, nil
		}
		a.snap = a.store.Snapshot()
		a.flash = "signed in as " + msg.user.Name
		return a.afterSignIn()

	case loggedOutMsg:
		a.snap = a.store.Snapshot()
		if msg.err != nil {
			a.flash = "signed out locally: " + errorText(msg.err)
		} else {
			a.flash = "signed out"
		}
		if _, redirected := guard(a.snap, a.screen); redirected {
			a.hasReturn = false
			return a.navigate(screenCatalog)
		}
		return a, nil

	case openVHSMsg:
		a.detail = newVHSModel(a.client, msg.vhs)
		a.detail = a.detail.resize(a.bodySize())
		return a.navigate(screenVHS)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.flash = ""

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "enter":
				if a.helpCursor < len(a.help) && a.help[a.helpCursor].url != "" {
					browser.Open(a.help[a.helpCursor].url) //nolint:errcheck // best-effort browser open
				}
			default:
				a.helpCursor = cursorMove(a.helpCursor, len(a.help), msg.String())
			}
			return a, nil
		}

		// Auth forms keep typing keys but own a few of their own.
		if a.screen == screenLogin || a.screen == screenRegister {
			switch msg.String() {
			case "esc":
				a.hasReturn = false
				return a.navigate(screenCatalog)
			case "ctrl+r":
				if a.screen == screenLogin {
					return a.navigate(screenRegister)
				}
				return a.navigate(screenLogin)
			}
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a.navigate(screenCatalog)
			case "2":
				return a.navigate(screenGenres)
			case "3":
				return a.navigate(screenRentals)
			case "4":
				return a.navigate(screenReviews)
			case "5":
				return a.navigate(screenProfile)
			case "l":
				if !a.snap.IsAuthenticated {
					a.returnTo = a.screen
					a.hasReturn = true
					a.screen = screenLogin
					cmd := a.enter(screenLogin)
					return a, cmd
				}
			case "o":
				// On the detail screen o opens the cover.
				if a.snap.IsAuthenticated && a.screen != screenVHS {
					return a, a.logout()
				}
			case "esc":
				if a.screen == screenVHS {
					a.screen = screenCatalog
					return a, nil
				}
			}
		}
	}

	return a.route(msg)
}

// route hands a message to the screen model that owns it. Load results go to
// their model even when another screen is showing.
func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.(type) {
	case catalogLoadedMsg:
		a.catalog, cmd = a.catalog.Update(msg)
		return a, cmd
	case vhsLoadedMsg, rentResultMsg, copyResultMsg:
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	case genresLoadedMsg, genreCreatedMsg:
		a.genres, cmd = a.genres.Update(msg)
		return a, cmd
	case rentalsLoadedMsg, finishResultMsg:
		a.rentals, cmd = a.rentals.Update(msg)
		return a, cmd
	case myReviewsLoadedMsg, reviewSavedMsg, reviewDeletedMsg:
		a.reviews, cmd = a.reviews.Update(msg)
		return a, cmd
	case profileLoadedMsg, favoritesSavedMsg:
		a.profile, cmd = a.profile.Update(msg)
		return a, cmd
	}

	switch a.screen {
	case screenLogin, screenRegister:
		a.auth, cmd = a.auth.Update(msg)
	case screenCatalog:
		a.catalog, cmd = a.catalog.Update(msg)
	case screenVHS:
		a.detail, cmd = a.detail.Update(msg)
	case screenGenres:
		a.genres, cmd = a.genres.Update(msg)
	case screenRentals:
		a.rentals, cmd = a.rentals.Update(msg)
	case screenReviews:
		a.reviews, cmd = a.reviews.Update(msg)
	case screenProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether the current screen is consuming text input, in
// which case single-letter global keys are passed through.
func (a App) isEditing() bool {
	switch a.screen {
	case screenLogin, screenRegister:
		return true
	case screenGenres:
		return a.genres.creating
	case screenReviews:
		return a.reviews.formOpen
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	identity := dimStyle.Render("not signed in . l to sign in")
	if a.snap.IsAuthenticated {
		name := "signed in"
		if a.snap.User != nil {
			name = a.snap.User.Name + " <" + a.snap.User.Email + ">"
		}
		identity = metaStyle.Render(name)
	}

	header := center(logo, a.width) + "\n" + center(identity, a.width)

	type tabEntry struct {
		key  string
		name string
		s    screen
	}
	tabs := []tabEntry{
		{"1", "Catalog", screenCatalog},
		{"2", "Genres", screenGenres},
		{"3", "Rentals", screenRentals},
		{"4", "Reviews", screenReviews},
		{"5", "Profile", screenProfile},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		active := t.s == a.screen || (t.s == screenCatalog && a.screen == screenVHS)
		var label string
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		if t.s.protected() && !a.snap.IsAuthenticated {
			label += dimStyle.Render(" *")
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max(0, (colWidth-labelWidth)/2)
		rightPad := max(0, colWidth-labelWidth-leftPad)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	nav := helpEntry("1-5", "tabs")
	switch a.screen {
	case screenLogin, screenRegister:
		body = a.auth.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+r", a.auth.switchLabel()) + "  " + helpEntry("esc", "cancel")
	case screenCatalog:
		body = a.catalog.View()
		help = " " + nav + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("n/p", "page") + "  " + a.sessionKey() + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case screenVHS:
		body = a.detail.View()
		help = " " + nav + "  " + helpEntry("R", "rent") + "  " + helpEntry("c", "copy id") + "  " + helpEntry("o", "cover") + "  " + helpEntry("esc", "back")
	case screenGenres:
		body = a.genres.View()
		if a.genres.creating {
			help = " " + helpEntry("enter", "create") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + nav + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("n", "new genre") + "  " + a.sessionKey() + "  " + helpEntry("q", "quit")
		}
	case screenRentals:
		body = a.rentals.View()
		help = " " + nav + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("f", "return") + "  " + helpEntry("r", "reload") + "  " + a.sessionKey() + "  " + helpEntry("q", "quit")
	case screenReviews:
		body = a.reviews.View()
		help = " " + a.reviews.helpKeys(nav)
	case screenProfile:
		body = a.profile.View()
		help = " " + nav + "  " + helpEntry("space", "toggle") + "  " + helpEntry("s", "save") + "  " + a.sessionKey() + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView(a.help, a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	status := ""
	if a.flash != "" {
		status = " " + okStyle.Render(a.flash)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

func (a App) sessionKey() string {
	if a.snap.IsAuthenticated {
		return helpEntry("o", "sign out")
	}
	return helpEntry("l", "sign in")
}

func center(s string, width int) string {
	pad := max(0, (width-lipgloss.Width(s))/2)
	return strings.Repeat(" ", pad) + s
}
