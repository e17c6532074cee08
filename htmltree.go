package md2delta

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// structuralTags are the element tags the HTML renderer separates with
// pretty-printing newlines. Whitespace touching them is renderer output, not
// document text.
var structuralTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "blockquote": true, "pre": true, "ul": true, "ol": true,
	"li": true, "hr": true, "div": true, "table": true, "thead": true,
	"tbody": true, "tr": true, "td": true, "th": true,
}

// containerTags are elements whose direct text children can only be
// structural whitespace.
var containerTags = map[string]bool{
	"body": true, "ul": true, "ol": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// parseDocumentTree parses a rendered HTML fragment into a node tree and
// returns the body element holding the document's root nodes. The tree is
// normalized in place so the walker only ever sees document text.
func parseDocumentTree(fragment string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	body := findElement(doc, "body")
	if body == nil {
		return nil, fmt.Errorf("%w: no body element", ErrDocumentParse)
	}
	normalizeTree(body)
	return body, nil
}

// findElement depth-first searches for the first element with the given tag.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// normalizeTree removes the renderer's structural whitespace: newline text
// nodes between block elements, the newline emitted after <br/>, and text
// trailing-newlines before block siblings. Preformatted subtrees keep their
// whitespace verbatim.
func normalizeTree(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "pre" {
		return
	}
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.TextNode {
			normalizeText(n, c)
			continue
		}
		normalizeTree(c)
	}
}

// normalizeText drops or trims one text node according to its surroundings.
func normalizeText(parent, c *html.Node) {
	if strings.TrimSpace(c.Data) == "" &&
		(containerTags[parent.Data] || isStructural(c.PrevSibling) || isStructural(c.NextSibling)) {
		parent.RemoveChild(c)
		return
	}
	if isStructural(c.PrevSibling) || isLineBreak(c.PrevSibling) {
		c.Data = strings.TrimLeft(c.Data, "\n")
	}
	if isStructural(c.NextSibling) || (c.NextSibling == nil && structuralTags[parent.Data]) {
		c.Data = strings.TrimRight(c.Data, "\n")
	}
	if c.Data == "" {
		parent.RemoveChild(c)
	}
}

func isStructural(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && structuralTags[n.Data]
}

func isLineBreak(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == "br"
}
