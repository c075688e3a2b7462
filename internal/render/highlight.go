package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/debemdeboas/notes-editor/internal/cache"
)

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

// SyntaxCSS returns the stylesheet for a chroma theme, generated once per theme.
func SyntaxCSS(theme string) string {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return string(css)
	}

	var buf strings.Builder
	s := style(theme)

	bg := s.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Themes without a foreground colour get dark text on light backgrounds
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := GetFormatter().WriteCSS(&buf, s); err != nil {
		renderLogger.Warn().Err(err).Str("syntax_theme", theme).Msg("Failed to write syntax CSS")
	}
	css := buf.String()
	cache.SetSyntaxCSS(theme, template.CSS(css))
	return css
}

// HighlightMarkdown renders the markup source itself, highlighted as markdown.
func HighlightMarkdown(markdown string, theme string) (string, error) {
	lexer := lexers.Get("markdown")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := html.New(
		html.WithClasses(true),
		html.WithLineNumbers(false),
		html.PreventSurroundingPre(true),
	)

	iterator, err := lexer.Tokenise(nil, markdown)
	if err != nil {
		return markdown, err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style(theme), iterator); err != nil {
		return markdown, err
	}

	result := `<div class="markdown-source">` + buf.String() + `</div>`
	return strings.ReplaceAll(result, "\n", "<br>\n"), nil
}
