package tui

import (
	"testing"

	"github.com/vhsrental/vhsrental/pkg/session"
)

func TestGuard(t *testing.T) {
	anon := session.Snapshot{}
	signedIn := session.Snapshot{AccessToken: "T1", IsAuthenticated: true}

	tests := []struct {
		name           string
		snap           session.Snapshot
		requested      screen
		want           screen
		wantRedirected bool
	}{
		{"anonymous catalog", anon, screenCatalog, screenCatalog, false},
		{"anonymous detail", anon, screenVHS, screenVHS, false},
		{"anonymous genres", anon, screenGenres, screenGenres, false},
		{"anonymous login", anon, screenLogin, screenLogin, false},
		{"anonymous rentals", anon, screenRentals, screenLogin, true},
		{"anonymous reviews", anon, screenReviews, screenLogin, true},
		{"anonymous profile", anon, screenProfile, screenLogin, true},
		{"signed in rentals", signedIn, screenRentals, screenRentals, false},
		{"signed in profile", signedIn, screenProfile, screenProfile, false},
		{"signed in login", signedIn, screenLogin, screenLogin, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, redirected := guard(tc.snap, tc.requested)
			if got != tc.want {
				t.Errorf("guard(%s) = %s, want %s", tc.requested, got, tc.want)
			}
			if redirected != tc.wantRedirected {
				t.Errorf("guard(%s) redirected = %v, want %v", tc.requested, redirected, tc.wantRedirected)
			}
		})
	}
}
