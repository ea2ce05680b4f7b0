package scan

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// The goldmark parser is configured once and shared; Parse keeps its state
// per call.
var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// firstHeading returns the plain text of the first heading in a markdown
// body, or "" if there is none.
func firstHeading(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	source := []byte(body)
	root := getMarkdownParser().Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := node.(*ast.Heading); ok {
			title = strings.TrimSpace(inlineText(heading, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// inlineText concatenates the text segments below node.
func inlineText(node ast.Node, source []byte) string {
	var b strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		default:
			b.WriteString(inlineText(child, source))
		}
	}
	return b.String()
}
