package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vhsrental/vhsrental/pkg/client"
)

// formatDue renders a rental due date relative to now.
func formatDue(due, now time.Time) string {
	d := due.Sub(now)
	switch {
	case d < -24*time.Hour:
		return fmt.Sprintf("%dd overdue", int(-d.Hours()/24))
	case d < 0:
		return fmt.Sprintf("%dh overdue", int(-d.Hours())+1)
	case d < time.Hour:
		return "due now"
	case d < 24*time.Hour:
		return fmt.Sprintf("due in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("due in %dd", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// errorText is the one-line message shown for a failed call.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	apiErr := client.Normalize(err)
	msg := apiErr.Summary()
	if apiErr.StatusCode != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, apiErr.StatusCode)
	}
	return strings.TrimSpace(msg)
}

// joinURL resolves a server-relative path such as an image URL against the
// API base URL.
func joinURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// money formats a rental price.
func money(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}
