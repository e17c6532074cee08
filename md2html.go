package md2delta

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdown builds the base parser: GitHub-flavored Markdown plus the four
// inline syntax extensions.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			Highlight,
			Underline,
			VideoPlaceholder,
			AudioPlaceholder,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Newlines inside a paragraph become <br>
			html.WithXHTML(),     // Self-closing tags
			html.WithUnsafe(),    // Raw inline HTML (<u>, <ins>, ...) stays an element
		),
	)
}

// toHTML renders Markdown content to an HTML fragment, the wire form between
// the base parser and the document tree the walker consumes.
func (s *Service) toHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownParse, err)
	}
	return buf.String(), nil
}
