package theme

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestFromRequest(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		cookie   string
		expected string
	}{
		{name: "Default", expected: "gruvbox"},
		{name: "Query", query: "monokai", expected: "monokai"},
		{name: "Cookie", cookie: "github", expected: "github"},
		{name: "Query wins over cookie", query: "monokai", cookie: "github", expected: "monokai"},
		{name: "Unknown query falls through to cookie", query: "no-such-style", cookie: "github", expected: "github"},
		{name: "Unknown names fall back", query: "nope", cookie: "nada", expected: "gruvbox"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/preview"
			if tc.query != "" {
				target += "?theme=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieSyntaxTheme, Value: tc.cookie})
			}

			if got := FromRequest(req, "gruvbox"); got != tc.expected {
				t.Errorf("Expected theme %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) {
		t.Error("Expected theme names to be sorted")
	}
	for _, want := range []string{"monokai", "gruvbox", "github"} {
		if !slices.Contains(names, want) {
			t.Errorf("Expected %q among the themes", want)
		}
		if !Valid(want) {
			t.Errorf("Expected %q to be valid", want)
		}
	}
}
