// Package util provides content hashing, front matter parsing and title
// derivation for note markup.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/mmarkdown/mmark/v2/mast"
)

// FrontMatter is the %%%-delimited TOML block a note may start with.
type FrontMatter struct {
	*mast.TitleData
	Consumed int
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	delimiter := []byte("%%%")

	// Check if md is long enough to contain the delimiter
	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	first := bytes.Index(md[:len(delimiter)+1], delimiter)
	if first == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	second := bytes.Index(md[first+len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := second + 2*len(delimiter) + 1
	if end > len(md) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	frontMatter := md[len(delimiter) : end-len(delimiter)-1]
	info := &FrontMatter{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(frontMatter), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Consumed = end

	return info, nil
}

// UntitledLayout formats the date of a generated title.
const UntitledLayout = "2006-01-02"

// DeriveTitle picks a title for markup submitted without one: the front
// matter title, then the first heading, then a dated placeholder.
func DeriveTitle(markup string, now time.Time) string {
	md := []byte(markup)
	if fm, err := GetFrontMatter(md); err == nil {
		if title := strings.TrimSpace(fm.Title); title != "" {
			return title
		}
		md = bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
		md = md[min(fm.Consumed, len(md)):]
	}

	if heading := firstHeading(md); heading != "" {
		return heading
	}
	return "Untitled - " + now.Format(UntitledLayout)
}

func firstHeading(md []byte) string {
	doc := parser.NewWithExtensions(parser.CommonExtensions).Parse(md)

	var title string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		h, ok := node.(*ast.Heading)
		if !ok || !entering {
			return ast.GoToNext
		}
		var sb strings.Builder
		ast.WalkFunc(h, func(n ast.Node, entering bool) ast.WalkStatus {
			if leaf := n.AsLeaf(); leaf != nil && entering {
				sb.Write(leaf.Literal)
			}
			return ast.GoToNext
		})
		if t := strings.Join(strings.Fields(sb.String()), " "); t != "" {
			title = t
			return ast.Terminate
		}
		return ast.SkipChildren
	})
	return title
}
