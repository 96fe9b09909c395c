// Package htmlrender converts Markdown to a standalone HTML5 document in-process.
package htmlrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Sentinel errors for HTML rendering.
var (
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrUnknownStyle   = errors.New("unknown highlight style")
)

// DefaultTitle is used when the document has no level-one heading.
const DefaultTitle = "Document"

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// documentTemplate wraps goldmark's fragment output in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`

// Options configure a Renderer.
type Options struct {
	HighlightStyle string // chroma style name; "" = DefaultStyle
	HardWraps      bool
}

// Renderer converts Markdown using goldmark (pure Go).
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GFM extensions and inline-styled code highlighting.
func New(opts Options) (*Renderer, error) {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultStyle
	}
	if !slices.Contains(styles.Names(), style) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(style), // inline styles; the file has no stylesheet
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	}
	htmlOpts := []renderer.Option{gmhtml.WithXHTML()}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, gmhtml.WithHardWraps())
	}
	rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(htmlOpts...))

	return &Renderer{md: goldmark.New(rendererOpts...)}, nil
}

// Styles lists the available highlight style names.
func Styles() []string {
	return styles.Names()
}

// Render converts Markdown content to a standalone HTML5 document whose
// title is the first level-one heading.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (r *Renderer) Render(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		src := []byte(content)
		doc := r.md.Parser().Parse(text.NewReader(src))

		var buf bytes.Buffer
		if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		title := Title(doc, src)
		if title == "" {
			title = DefaultTitle
		}
		done <- result{html: fmt.Sprintf(documentTemplate, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Title returns the plain text of the first level-one heading in doc, or "".
func Title(doc ast.Node, src []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(plainText(h, src))
		return ast.WalkStop, nil
	})
	return title
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
