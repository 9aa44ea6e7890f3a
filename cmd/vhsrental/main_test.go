package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vhsrental/vhsrental/internal/apitest"
	"github.com/vhsrental/vhsrental/pkg/client"
	"github.com/vhsrental/vhsrental/pkg/session"
)

func newTestClient(t *testing.T) (*client.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("Fox Mulder", "fox@example.com", "iwanttobelieve")
	return client.New(srv.BaseURL(), session.New(session.NewMemoryStorage())), srv
}

func TestRunLogin(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  string
		wantAuth bool
	}{
		{"success", "fox@example.com\niwanttobelieve\n", "", true},
		{"crlf input", "fox@example.com\r\niwanttobelieve\r\n", "", true},
		{"bad password", "fox@example.com\nscully\n", "Bad credentials", false},
		{"missing password", "fox@example.com\n\n", "all fields are required", false},
		{"eof", "fox@example.com\n", "all fields are required", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t)
			var out bytes.Buffer
			err := runLogin(context.Background(), c, strings.NewReader(tc.input), &out)
			if tc.wantErr == "" && err != nil {
				t.Fatalf("runLogin() error = %v", err)
			}
			if tc.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tc.wantErr)) {
				t.Fatalf("runLogin() error = %v, want containing %q", err, tc.wantErr)
			}
			if got := c.Session().Snapshot().IsAuthenticated; got != tc.wantAuth {
				t.Errorf("IsAuthenticated = %v, want %v", got, tc.wantAuth)
			}
			if tc.wantAuth && !strings.Contains(out.String(), "Welcome, Fox Mulder.") {
				t.Errorf("output %q missing welcome", out.String())
			}
		})
	}
}

func TestRunRegister(t *testing.T) {
	c, _ := newTestClient(t)
	var out bytes.Buffer
	in := strings.NewReader("Walter Skinner\nskinner@example.com\ndirector\n")
	if err := runRegister(context.Background(), c, in, &out); err != nil {
		t.Fatalf("runRegister() error = %v", err)
	}
	snap := c.Session().Snapshot()
	if !snap.IsAuthenticated || snap.User == nil || snap.User.Email != "skinner@example.com" {
		t.Errorf("snapshot after register = %+v", snap)
	}
}

func TestRunRegisterDuplicateEmail(t *testing.T) {
	c, _ := newTestClient(t)
	var out bytes.Buffer
	in := strings.NewReader("Fox Again\nfox@example.com\npassword\n")
	err := runRegister(context.Background(), c, in, &out)
	if !client.IsStatus(err, 409) {
		t.Fatalf("runRegister() error = %v, want 409", err)
	}
	if c.Session().Snapshot().IsAuthenticated {
		t.Error("session authenticated after failed register")
	}
}

func TestRunWhoami(t *testing.T) {
	c, _ := newTestClient(t)
	var out bytes.Buffer

	if err := runWhoami(context.Background(), c, &out); err != nil {
		t.Fatalf("runWhoami() anonymous error = %v", err)
	}
	if !strings.Contains(out.String(), "Not signed in") {
		t.Errorf("anonymous output = %q", out.String())
	}

	login := strings.NewReader("fox@example.com\niwanttobelieve\n")
	if err := runLogin(context.Background(), c, login, &bytes.Buffer{}); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}
	out.Reset()
	if err := runWhoami(context.Background(), c, &out); err != nil {
		t.Fatalf("runWhoami() error = %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Fox Mulder <fox@example.com>") {
		t.Errorf("output = %q, want identity line", got)
	}
	if got := out.String(); !strings.Contains(got, "Access token expires") {
		t.Errorf("output = %q, want token expiry", got)
	}
}

func TestRunWhoamiExpiredSession(t *testing.T) {
	c, srv := newTestClient(t)
	login := strings.NewReader("fox@example.com\niwanttobelieve\n")
	if err := runLogin(context.Background(), c, login, &bytes.Buffer{}); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}
	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()

	var out bytes.Buffer
	if err := runWhoami(context.Background(), c, &out); err != nil {
		t.Fatalf("runWhoami() error = %v", err)
	}
	if !strings.Contains(out.String(), "session has expired") {
		t.Errorf("output = %q", out.String())
	}
	if c.Session().Snapshot().IsAuthenticated {
		t.Error("session still authenticated after failed refresh")
	}
}

func TestRunLogout(t *testing.T) {
	c, srv := newTestClient(t)
	var out bytes.Buffer

	if err := runLogout(context.Background(), c, &out); err != nil {
		t.Fatalf("runLogout() anonymous error = %v", err)
	}
	if got := len(srv.RequestsTo("POST", "/auth/logout")); got != 0 {
		t.Errorf("anonymous logout sent %d requests, want 0", got)
	}

	login := strings.NewReader("fox@example.com\niwanttobelieve\n")
	if err := runLogin(context.Background(), c, login, &bytes.Buffer{}); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}
	out.Reset()
	if err := runLogout(context.Background(), c, &out); err != nil {
		t.Fatalf("runLogout() error = %v", err)
	}
	if got := out.String(); got != "Signed out.\n" {
		t.Errorf("output = %q, want %q", got, "Signed out.\n")
	}
	if c.Session().Snapshot().IsAuthenticated {
		t.Error("session still authenticated after logout")
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"dana\n", "dana", nil},
		{"  dana  \r\n", "dana", nil},
		{"no newline", "no newline", nil},
		{"", "", errMissingInput},
	}

	for _, tc := range tests {
		var out bytes.Buffer
		got, err := prompt(bufio.NewReader(strings.NewReader(tc.input)), &out, "Name: ")
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("prompt(%q) error = %v, want %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("prompt(%q) = %q, want %q", tc.input, got, tc.want)
		}
		if out.String() != "Name: " {
			t.Errorf("prompt(%q) wrote %q", tc.input, out.String())
		}
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run([]string{"rewind"})
	if err == nil || !strings.Contains(err.Error(), `unknown command "rewind"`) {
		t.Errorf("run(rewind) error = %v", err)
	}
}

func TestPrintHelpListsCommands(t *testing.T) {
	var out bytes.Buffer
	printHelp(&out)
	for _, want := range []string{"vhsrental login", "vhsrental register", "vhsrental logout", "vhsrental whoami"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}
