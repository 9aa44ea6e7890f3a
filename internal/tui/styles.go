package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

// Tracking animation for the logo, like a tape head settling.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "V H S  R E N T A L" as a wave running from
// tape magenta (#7a1f5c) to neon cyan (#22d3ee).
func renderShimmerLogo(frame int) string {
	const text = "VHSRENTAL"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Magenta (122, 31, 92) -> cyan (34, 211, 238)
		r := clampByte(122 + b*(34-122))
		g := clampByte(31 + b*(211-31))
		bl := clampByte(92 + b*(238-92))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		switch {
		case i == 2:
			out += "    "
		case i < n-1:
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e4e4ec")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c4d0"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
	helpLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22d3ee"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e879f9")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15"))

	selectedRowBg      = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))
	sectionHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#606878"))
	inputPromptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22d3ee")).Bold(true)

	// Status colors for tapes
	statusColors = map[domain.VHSStatus]lipgloss.Color{
		domain.StatusAvailable:  lipgloss.Color("#4ade80"),
		domain.StatusOutOfStock: lipgloss.Color("#f59e0b"),
		domain.StatusDamaged:    lipgloss.Color("#f87171"),
		domain.StatusLost:       lipgloss.Color("#606878"),
	}
)

// StatusStyle returns a style colored for the given tape status.
func StatusStyle(s domain.VHSStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// StatusBadge renders a status as a short label, e.g. "[OUT OF STOCK]".
func StatusBadge(s domain.VHSStatus) string {
	if s == "" {
		return ""
	}
	return StatusStyle(s).Render("[" + strings.ReplaceAll(string(s), "_", " ") + "]")
}

// stars renders a 1-5 rating.
func stars(rating float64) string {
	n := int(math.Round(rating))
	n = max(0, min(n, 5))
	return starStyle.Render(strings.Repeat("★", n)) + metaStyle.Render(strings.Repeat("☆", 5-n))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

func helpItems(baseURL string) []helpItem {
	return []helpItem{
		{"API docs", "Swagger UI", baseURL + "/swagger-ui.html"},
		{"OpenAPI", "machine readable API description", baseURL + "/v3/api-docs"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#22d3ee")).
		Bold(true).
		Render("V H S   R E N T A L")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Be kind, rewind."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"vhsrental", "Browse the catalog (interactive TUI)"},
		{"vhsrental login", "Sign in with email and password"},
		{"vhsrental register", "Create an account"},
		{"vhsrental logout", "Clear your session"},
		{"vhsrental whoami", "Show the signed-in user"},
		{"vhsrental version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
