package tui

import (
	"strings"
	"testing"

	"github.com/vhsrental/vhsrental/pkg/domain"
)

func TestStatusStyleKnownStatus(t *testing.T) {
	for _, s := range domain.Statuses {
		t.Run(string(s), func(t *testing.T) {
			rendered := StatusStyle(s).Render(string(s))
			if !strings.Contains(rendered, string(s)) {
				t.Errorf("StatusStyle(%q).Render(%q) = %q, want to contain %q", s, s, rendered, s)
			}
		})
	}
}

func TestStatusStyleUnknownStatusFallback(t *testing.T) {
	rendered := StatusStyle("RECALLED").Render("RECALLED")
	if !strings.Contains(rendered, "RECALLED") {
		t.Errorf("StatusStyle fallback did not render text: %q", rendered)
	}
}

func TestStatusBadgeFormat(t *testing.T) {
	tests := []struct {
		status domain.VHSStatus
		want   string
	}{
		{domain.StatusAvailable, "[AVAILABLE]"},
		{domain.StatusOutOfStock, "[OUT OF STOCK]"},
		{domain.StatusLost, "[LOST]"},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			badge := StatusBadge(tc.status)
			if !strings.Contains(badge, tc.want) {
				t.Errorf("StatusBadge(%q) = %q, want to contain %q", tc.status, badge, tc.want)
			}
		})
	}
}

func TestStatusBadgeEmptyStatus(t *testing.T) {
	if badge := StatusBadge(""); badge != "" {
		t.Errorf("StatusBadge(\"\") = %q, want empty string", badge)
	}
}

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") {
		t.Errorf("helpEntry('q','quit') does not contain key 'q': %q", result)
	}
	if !strings.Contains(result, "quit") {
		t.Errorf("helpEntry('q','quit') does not contain label 'quit': %q", result)
	}
}

func TestHelpItemsPointAtAPIDocs(t *testing.T) {
	items := helpItems("http://localhost:8080/api")
	if len(items) != 2 {
		t.Fatalf("helpItems returned %d items, want 2", len(items))
	}
	if items[0].url != "http://localhost:8080/api/swagger-ui.html" {
		t.Errorf("items[0].url = %q", items[0].url)
	}
	if items[1].url != "http://localhost:8080/api/v3/api-docs" {
		t.Errorf("items[1].url = %q", items[1].url)
	}
}

func TestHelpViewMarksCursor(t *testing.T) {
	view := helpView(helpItems("http://x"), 1)
	if !strings.Contains(view, "> ") {
		t.Errorf("helpView did not mark the cursor:\n%s", view)
	}
	if !strings.Contains(view, "vhsrental login") {
		t.Errorf("helpView missing commands section:\n%s", view)
	}
}

func TestRenderShimmerLogoContainsLetters(t *testing.T) {
	logo := renderShimmerLogo(7)
	for _, r := range "VHSRENTAL" {
		if !strings.ContainsRune(logo, r) {
			t.Errorf("logo missing %q", r)
		}
	}
}
