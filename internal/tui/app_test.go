package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vhsrental/vhsrental/internal/apitest"
	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/session"
)

const (
	testName     = "Dana Scully"
	testEmail    = "dana@example.com"
	testPassword = "trustno1"
)

func newTestClient(t *testing.T) (*client.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser(testName, testEmail, testPassword)
	return client.New(srv.BaseURL(), session.New(session.NewMemoryStorage())), srv
}

func newTestApp(t *testing.T) (App, *apitest.Server) {
	t.Helper()
	c, srv := newTestClient(t)
	a := NewApp(c)
	t.Cleanup(a.Close)
	a.width = 80
	a.height = 30
	return a, srv
}

// drain discards a pending change notification.
func drain(a App) {
	select {
	case <-a.changes:
	default:
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

// signIn marks the session authenticated without going through the API.
func signIn(t *testing.T, a App) App {
	t.Helper()
	if err := a.store.SetAccessToken("token"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	drain(a)
	a, _ = press(t, a, sessionChangedMsg{})
	return a
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key        string
		wantScreen screen
	}{
		{"1", screenCatalog},
		{"2", screenGenres},
		{"3", screenRentals},
		{"4", screenReviews},
		{"5", screenProfile},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a, _ := newTestApp(t)
			a = signIn(t, a)
			a, _ = press(t, a, keyMsg(tc.key))
			if a.screen != tc.wantScreen {
				t.Errorf("after key %q: screen = %s, want %s", tc.key, a.screen, tc.wantScreen)
			}
		})
	}
}

func TestAppProtectedTabRedirectsAnonymousToLogin(t *testing.T) {
	for _, key := range []string{"3", "4", "5"} {
		t.Run(key, func(t *testing.T) {
			a, _ := newTestApp(t)
			a, _ = press(t, a, keyMsg(key))
			if a.screen != screenLogin {
				t.Fatalf("screen = %s, want login", a.screen)
			}
			if !a.hasReturn {
				t.Error("expected the requested screen to be remembered")
			}
		})
	}
}

func TestAppSessionEndRedirectsToLogin(t *testing.T) {
	a, _ := newTestApp(t)
	a = signIn(t, a)
	a, _ = press(t, a, keyMsg("3"))
	if a.screen != screenRentals {
		t.Fatalf("screen = %s, want rentals", a.screen)
	}

	if err := a.store.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	select {
	case <-a.changes:
	default:
		t.Fatal("expected a change notification after Logout")
	}

	a, cmd := press(t, a, sessionChangedMsg{})
	if a.screen != screenLogin {
		t.Errorf("screen = %s, want login", a.screen)
	}
	if !a.hasReturn || a.returnTo != screenRentals {
		t.Errorf("returnTo = %s (set=%v), want rentals", a.returnTo, a.hasReturn)
	}
	if cmd == nil {
		t.Error("expected the App to keep waiting for session changes")
	}
	if !strings.Contains(a.flash, "sign in again") {
		t.Errorf("flash = %q", a.flash)
	}
}

func TestAppSessionChangeOnPublicScreenStays(t *testing.T) {
	a, _ := newTestApp(t)
	a = signIn(t, a)
	a, _ = press(t, a, keyMsg("2"))
	if err := a.store.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	drain(a)
	a, _ = press(t, a, sessionChangedMsg{})
	if a.screen != screenGenres {
		t.Errorf("screen = %s, want genres", a.screen)
	}
}

func TestAppLoginContinuesToRequestedScreen(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("3"))
	if a.screen != screenLogin {
		t.Fatalf("screen = %s, want login", a.screen)
	}

	a, _ = press(t, a, keyMsg(testEmail))
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a, _ = press(t, a, keyMsg(testPassword))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg := cmd()
	done, ok := msg.(authDoneMsg)
	if !ok {
		t.Fatalf("submit produced %T, want authDoneMsg", msg)
	}
	if done.err != nil {
		t.Fatalf("login failed: %v", done.err)
	}

	a, _ = press(t, a, done)
	if a.screen != screenRentals {
		t.Errorf("screen = %s, want rentals", a.screen)
	}
	if !a.snap.IsAuthenticated || a.snap.User == nil || a.snap.User.Email != testEmail {
		t.Errorf("snapshot = %+v, want signed-in %s", a.snap, testEmail)
	}
}

func TestAppLoginFailureStaysOnForm(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("l"))
	a, _ = press(t, a, keyMsg(testEmail))
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a, _ = press(t, a, keyMsg("wrong"))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	a, _ = press(t, a, cmd())

	if a.screen != screenLogin {
		t.Errorf("screen = %s, want login", a.screen)
	}
	if view := a.auth.View(); !strings.Contains(view, "Bad credentials (401)") {
		t.Errorf("expected the normalized error in the form, got:\n%s", view)
	}
}

func TestAppLoginRequiredMsgRemembersScreen(t *testing.T) {
	a, _ := newTestApp(t)
	a.screen = screenVHS
	a, _ = press(t, a, loginRequiredMsg{})
	if a.screen != screenLogin {
		t.Fatalf("screen = %s, want login", a.screen)
	}
	if a.returnTo != screenVHS {
		t.Errorf("returnTo = %s, want vhs", a.returnTo)
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a, _ := newTestApp(t)
	_, cmd := press(t, a, keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected 'q' to quit")
	}
}

func TestAppQTypedOnLoginScreen(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("l"))
	a, _ = press(t, a, keyMsg("q"))
	if a.screen != screenLogin {
		t.Fatalf("screen = %s, want login", a.screen)
	}
	if got := a.auth.inputs[0].Value(); got != "q" {
		t.Errorf("email input = %q, want %q", got, "q")
	}
}

func TestAppCtrlCQuitsFromForm(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("l"))
	_, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command on ctrl+c")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected ctrl+c to quit")
	}
}

func TestAppEscFromLoginReturnsToCatalog(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("3"))
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.screen != screenCatalog {
		t.Errorf("screen = %s, want catalog", a.screen)
	}
	if a.hasReturn {
		t.Error("expected cancelled login to forget the requested screen")
	}
}

func TestAppCtrlRTogglesRegister(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("l"))
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlR})
	if a.screen != screenRegister || !a.auth.register {
		t.Fatalf("screen = %s register=%v, want register form", a.screen, a.auth.register)
	}
	if len(a.auth.inputs) != 3 {
		t.Errorf("register form has %d inputs, want 3", len(a.auth.inputs))
	}
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlR})
	if a.screen != screenLogin {
		t.Errorf("screen = %s, want login", a.screen)
	}
}

func TestAppHelpOverlayOpenAndClose(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, keyMsg("h"))
	if !a.helpOpen {
		t.Fatal("expected helpOpen after 'h'")
	}
	if view := a.View(); !strings.Contains(view, "swagger") && !strings.Contains(view, "Swagger") {
		t.Errorf("expected API docs link in help overlay, got:\n%s", view)
	}
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.helpOpen {
		t.Error("expected help closed after esc")
	}
}

func TestAppViewRendersTabBar(t *testing.T) {
	a, _ := newTestApp(t)
	a, _ = press(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := a.View()
	for _, tab := range []string{"Catalog", "Genres", "Rentals", "Reviews", "Profile"} {
		if !strings.Contains(view, tab) {
			t.Errorf("expected %q tab in app view, got:\n%s", tab, view)
		}
	}
	if !strings.Contains(view, "not signed in") {
		t.Errorf("expected anonymous identity line, got:\n%s", view)
	}
}

func TestAppLayoutFitsTerminal(t *testing.T) {
	termHeight := 12
	a, _ := newTestApp(t)
	a, _ = press(t, a, tea.WindowSizeMsg{Width: 80, Height: termHeight})

	a, _ = press(t, a, keyMsg("h"))
	lines := strings.Split(a.View(), "\n")
	if len(lines) > termHeight {
		t.Errorf("App.View() has %d lines, want <= %d", len(lines), termHeight)
		for i, line := range lines {
			t.Logf("  %2d: %q", i, line)
		}
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a, _ := newTestApp(t)
	initial := a.frame
	a, _ = press(t, a, shimmerTickMsg{})
	if a.frame != initial+1 {
		t.Errorf("expected frame=%d after shimmerTickMsg, got %d", initial+1, a.frame)
	}
}

func TestAppLogoutReturnsToCatalog(t *testing.T) {
	a, srv := newTestApp(t)
	a, _ = press(t, a, keyMsg("l"))
	a, _ = press(t, a, keyMsg(testEmail))
	a, _ = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a, _ = press(t, a, keyMsg(testPassword))
	a, cmd := press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a, _ = press(t, a, cmd())
	a, _ = press(t, a, keyMsg("5"))
	if a.screen != screenProfile {
		t.Fatalf("screen = %s, want profile", a.screen)
	}

	a, cmd = press(t, a, keyMsg("o"))
	if cmd == nil {
		t.Fatal("expected a logout command")
	}
	a, _ = press(t, a, cmd())
	if a.screen != screenCatalog {
		t.Errorf("screen = %s, want catalog", a.screen)
	}
	if a.snap.IsAuthenticated {
		t.Error("expected anonymous session after logout")
	}
	if got := len(srv.RequestsTo("POST", "/auth/logout")); got != 1 {
		t.Errorf("logout calls = %d, want 1", got)
	}
}

func TestAppCoverKeyOnDetailKeepsSession(t *testing.T) {
	a, srv := newTestApp(t)
	a = signIn(t, a)
	v := srv.AddVHS("Alien", srv.AddGenre("Horror"), 3)
	a, _ = press(t, a, openVHSMsg{vhs: v})
	if a.screen != screenVHS {
		t.Fatalf("screen = %s, want vhs", a.screen)
	}

	a, cmd := press(t, a, keyMsg("o"))
	if cmd != nil {
		if _, ok := cmd().(loggedOutMsg); ok {
			t.Fatal("o on the detail screen signed the user out")
		}
	}
	if !a.store.Snapshot().IsAuthenticated {
		t.Error("session cleared by the cover key")
	}
	if a.screen != screenVHS {
		t.Errorf("screen = %s, want vhs", a.screen)
	}
	if got := a.detail.statusMsg; got != "no cover image" {
		t.Errorf("detail status = %q, want %q", got, "no cover image")
	}
	if got := len(srv.RequestsTo("POST", "/auth/logout")); got != 0 {
		t.Errorf("logout calls = %d, want 0", got)
	}
}
