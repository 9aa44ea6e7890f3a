package tui

import "github.com/charmbracelet/bubbles/textinput"

// pageSize is the default number of items fetched per API call.
const pageSize = 20

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 500

// newInput builds a form field in the shared style.
func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = maxInputLen
	ti.Width = width
	ti.Prompt = inputPromptStyle.Render("> ")
	return ti
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// cursorMove applies j/k style navigation to a cursor over n items.
func cursorMove(cursor, n int, key string) int {
	switch key {
	case "j", "down":
		if cursor < n-1 {
			return cursor + 1
		}
	case "k", "up":
		if cursor > 0 {
			return cursor - 1
		}
	case "g", "home":
		return 0
	case "G", "end":
		if n > 0 {
			return n - 1
		}
	}
	return cursor
}
