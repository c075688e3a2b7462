// Package render turns note markup into preview HTML with chroma highlighted code blocks.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/cache"
	"github.com/debemdeboas/notes-editor/internal/util"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// DefaultSyntaxTheme is used when no chroma style matches the requested name.
const DefaultSyntaxTheme = "gruvbox"

func style(name string) *chroma.Style {
	if s, ok := styles.Registry[name]; ok {
		return s
	}
	return styles.Get(DefaultSyntaxTheme)
}

func HighlightCode(code, language, syntaxTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := GetFormatter().Format(&buf, style(syntaxTheme), iterator); err != nil {
		renderLogger.Warn().Err(err).Str("language", language).Msg("Failed to highlight code block")
		return code
	}
	return buf.String()
}

// RenderPreview renders markup to HTML. The returned title comes from a %%%
// front matter block, or is empty.
func RenderPreview(md []byte, syntaxTheme string) ([]byte, string) {
	md = markdown.NormalizeNewlines(md)

	// Includes would let a note read files from the server.
	p := parser.NewWithExtensions((mparser.Extensions &^ parser.Includes) | parser.NoIntraEmphasis)

	var info *mast.TitleData
	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		Flags: parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	language := "en"
	title := ""
	if info != nil {
		title = info.Title
		if info.Language != "" {
			language = info.Language
		}
	}

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	opts := md_html.RendererOptions{
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), lang, syntaxTheme))
				return ast.GoToNext, true
			}

			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts)), title
}

// Guards the check-render-set sequence in RenderPreviewCached.
var renderCacheMutex sync.Mutex

// RenderPreviewCached renders md once per content hash and syntax theme.
func RenderPreviewCached(md []byte, syntaxTheme string) ([]byte, string) {
	contentHash := util.ContentHash(md)

	if cached, found := cache.GetPreview(contentHash, syntaxTheme); found {
		renderLogger.Debug().Str("content_hash", contentHash).Str("syntax_theme", syntaxTheme).Msg("Cache hit for rendered preview")
		return cached.HTML, cached.Title
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetPreview(contentHash, syntaxTheme); found {
		return cached.HTML, cached.Title
	}

	renderLogger.Debug().Str("content_hash", contentHash).Str("syntax_theme", syntaxTheme).Msg("Cache miss for rendered preview")
	html, title := RenderPreview(md, syntaxTheme)
	cache.SetPreview(contentHash, syntaxTheme, html, title)

	return html, title
}

// WarmCache renders md in the background so the next preview request is a hit.
func WarmCache(md []byte, syntaxTheme string) {
	go func() {
		RenderPreviewCached(md, syntaxTheme)
		renderLogger.Debug().Str("syntax_theme", syntaxTheme).Msg("Preview cache warmed")
	}()
}
