package tui

import "github.com/vhsrental/vhsrental/pkg/session"

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenCatalog
	screenVHS
	screenGenres
	screenRentals
	screenReviews
	screenProfile
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "login"
	case screenRegister:
		return "register"
	case screenCatalog:
		return "catalog"
	case screenVHS:
		return "vhs"
	case screenGenres:
		return "genres"
	case screenRentals:
		return "rentals"
	case screenReviews:
		return "reviews"
	case screenProfile:
		return "profile"
	}
	return "unknown"
}

// protected screens need a signed-in user.
func (s screen) protected() bool {
	switch s {
	case screenRentals, screenReviews, screenProfile:
		return true
	}
	return false
}

// guard decides which screen to show for a requested one. An anonymous
// session asking for a protected screen is sent to login; redirected is true
// in that case so the caller can remember where the user was going.
func guard(snap session.Snapshot, requested screen) (target screen, redirected bool) {
	if requested.protected() && !snap.IsAuthenticated {
		return screenLogin, true
	}
	return requested, false
}
