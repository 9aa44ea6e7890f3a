package tui

import (
	"strings"
	"testing"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "Alien", 10, "Alien"},
		{"at limit", "Alien", 5, "Alien"},
		{"over limit", "The Thing from Another World", 5, "The …"},
		{"empty string", "", 5, ""},
		{"single char over", "ab", 1, "…"},
		{"CJK chars", "你好世界", 3, "你好…"},
		{"multi-byte at boundary", "Amélie Poulain", 5, "Amél…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncStr(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateToHeightLimitsLines(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	result := truncateToHeight(input, 3)

	lines := strings.Count(result, "\n")
	if lines > 3 {
		t.Errorf("truncateToHeight(5 lines, 3) produced %d newlines, want <= 3", lines)
	}
	if !strings.Contains(result, "line1") {
		t.Errorf("truncateToHeight result missing first line: %q", result)
	}
	if strings.Contains(result, "line4") {
		t.Errorf("truncateToHeight result should not contain line4: %q", result)
	}
}

func TestTruncateToHeightReturnsInputWhenItFits(t *testing.T) {
	input := "line1\nline2\nline3\n"
	for _, max := range []int{-1, 0, 10} {
		if got := truncateToHeight(input, max); got != input {
			t.Errorf("truncateToHeight(%d) = %q, want input unchanged", max, got)
		}
	}
}

func TestCursorMove(t *testing.T) {
	tests := []struct {
		cursor, n int
		key       string
		want      int
	}{
		{0, 3, "j", 1},
		{2, 3, "down", 2},
		{1, 3, "k", 0},
		{0, 3, "up", 0},
		{2, 3, "g", 0},
		{0, 3, "G", 2},
		{0, 0, "G", 0},
		{1, 3, "x", 1},
	}
	for _, tc := range tests {
		if got := cursorMove(tc.cursor, tc.n, tc.key); got != tc.want {
			t.Errorf("cursorMove(%d, %d, %q) = %d, want %d", tc.cursor, tc.n, tc.key, got, tc.want)
		}
	}
}

func TestNewInputUsesCharLimit(t *testing.T) {
	ti := newInput("email", 30)
	if ti.CharLimit != maxInputLen {
		t.Errorf("CharLimit = %d, want %d", ti.CharLimit, maxInputLen)
	}
	if ti.Placeholder != "email" {
		t.Errorf("Placeholder = %q, want %q", ti.Placeholder, "email")
	}
}
