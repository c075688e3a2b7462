// Package theme picks the chroma style previews are highlighted with.
package theme

import (
	"net/http"
	"slices"

	"github.com/alecthomas/chroma/v2/styles"
)

const (
	QuerySyntaxTheme  = "theme"
	CookieSyntaxTheme = "syntax-theme"
)

// FromRequest returns the syntax theme named by the query string, then by the
// syntax theme cookie. Names chroma does not know fall back to def.
func FromRequest(r *http.Request, def string) string {
	if name := r.URL.Query().Get(QuerySyntaxTheme); Valid(name) {
		return name
	}
	if cookie, err := r.Cookie(CookieSyntaxTheme); err == nil && Valid(cookie.Value) {
		return cookie.Value
	}
	return def
}

func Valid(name string) bool {
	if name == "" {
		return false
	}
	_, ok := styles.Registry[name]
	return ok
}

func Names() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}
