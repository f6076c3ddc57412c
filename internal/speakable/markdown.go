// Package speakable turns documents into text a speech engine can read
// aloud.
package speakable

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// FromMarkdown renders markdown source as plain text with one line per
// block. Code and raw HTML are dropped, link and image text is kept, and
// blocks without closing punctuation get a period so engines pause there.
func FromMarkdown(source []byte) (string, error) {
	doc := markdown.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				buf.Write(n.Segment.Value(source))
				if n.SoftLineBreak() || n.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}

		case *ast.String:
			if entering {
				buf.Write(n.Value)
			}

		case *ast.AutoLink:
			if entering {
				buf.Write(n.Label(source))
			}

		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if !entering {
				endBlock(&buf)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk markdown: %w", err)
	}

	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// endBlock closes the current block with punctuation and a newline.
func endBlock(buf *bytes.Buffer) {
	trimmed := bytes.TrimRightFunc(buf.Bytes(), unicode.IsSpace)
	buf.Truncate(len(trimmed))
	if len(trimmed) == 0 || trimmed[len(trimmed)-1] == '\n' {
		return
	}

	last, _ := utf8.DecodeLastRune(trimmed)
	if !unicode.IsPunct(last) || last == ')' || last == '"' || last == '\'' {
		buf.WriteByte('.')
	}
	buf.WriteByte('\n')
}
