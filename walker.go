package md2delta

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are the element tags that append a trailing newline operation
// carrying the tag's mutated context after their children are processed.
var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "ul": true, "ol": true, "li": true,
}

var headerLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// walker accumulates delta operations over a depth-first traversal of the
// document tree. Attribute contexts are copied on descent and the pending
// list type is threaded as a parameter, so traversal state is never shared
// across siblings.
type walker struct {
	ops      []Op
	maxDepth int
}

// walkRoots converts every root node under body into operations.
func (w *walker) walkRoots(body *html.Node) error {
	root := Attributes{}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := w.node(c, root, "", 0); err != nil {
			return err
		}
	}
	return nil
}

// push appends an operation, concatenating it onto the previous one when
// both are attribute-less string inserts. Operations carrying attributes
// never merge, which keeps block newlines (header, list, ...) as their own
// operations.
func (w *walker) push(op Op) {
	if s, ok := op.Insert.(string); ok && len(op.Attributes) == 0 && len(w.ops) > 0 {
		last := &w.ops[len(w.ops)-1]
		if prev, ok := last.Insert.(string); ok && len(last.Attributes) == 0 {
			last.Insert = prev + s
			return
		}
	}
	w.ops = append(w.ops, op)
}

func (w *walker) node(n *html.Node, attrs Attributes, pendingList string, depth int) error {
	if depth > w.maxDepth {
		return fmt.Errorf("%w: %d levels", ErrMaxDepth, depth)
	}

	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			w.push(Op{Insert: n.Data, Attributes: attrs.orNil()})
		}
		return nil
	case html.ElementNode:
	default:
		// Comments, doctype and friends contribute nothing.
		return nil
	}

	// Short-circuit tags: no children, no trailing newline.
	switch n.Data {
	case "img":
		if src := attrValue(n, "src"); src != "" {
			w.push(Op{Insert: Embed{"image": src}})
		}
		return nil
	case "video":
		if src := attrValue(n, "src"); src != "" {
			w.push(Op{Insert: Embed{"video": src}})
		}
		return nil
	case "audio":
		if src := attrValue(n, "src"); src != "" {
			w.push(Op{Insert: Embed{"audio": src}})
		}
		return nil
	case "br":
		w.push(Op{Insert: "\n", Attributes: attrs.orNil()})
		return nil
	case "li":
		return w.listItem(n, attrs, pendingList, depth)
	}

	a := attrs.clone()
	childList := pendingList
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		a["header"] = headerLevels[n.Data]
	case "blockquote":
		a["blockquote"] = true
	case "pre":
		a["code-block"] = true
	case "code":
		// Fenced code carries a language class; bare <code> is inline code.
		if strings.HasPrefix(attrValue(n, "class"), "language-") {
			a["code-block"] = true
		} else {
			a["code"] = true
		}
	case "ul":
		childList = ListBullet
	case "ol":
		childList = ListOrdered
	case "strong", "b":
		a["bold"] = true
	case "em", "i":
		a["italic"] = true
	case "u", "ins":
		a["underline"] = true
	case "mark":
		a["highlight"] = true
	case "s", "del":
		a["strike"] = true
	case "a":
		a["link"] = attrValue(n, "href")
	case "p":
		// Paragraphs are not block tags; they emit their newline themselves.
		if err := w.children(n.FirstChild, a, childList, depth); err != nil {
			return err
		}
		w.push(Op{Insert: "\n", Attributes: a.orNil()})
		return nil
	}

	if err := w.children(n.FirstChild, a, childList, depth); err != nil {
		return err
	}
	if blockTags[n.Data] {
		w.push(Op{Insert: "\n", Attributes: a.orNil()})
	}
	return nil
}

func (w *walker) children(first *html.Node, attrs Attributes, pendingList string, depth int) error {
	for c := first; c != nil; c = c.NextSibling {
		if err := w.node(c, attrs, pendingList, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// listItem converts an li element. The list key lands on the item's trailing
// newline operation while inline children keep the surrounding context. A
// leading checkbox input is consumed, never emitted as text, and its checked
// state overrides the pending bullet/ordered value.
func (w *walker) listItem(n *html.Node, attrs Attributes, pendingList string, depth int) error {
	line := attrs.clone()
	first := n.FirstChild
	if ok, checked := checkboxInput(first); ok {
		if checked {
			line["list"] = ListChecked
		} else {
			line["list"] = ListUnchecked
		}
		first = first.NextSibling
		// The renderer separates the checkbox from the label with one space.
		if first != nil && first.Type == html.TextNode {
			first.Data = strings.TrimPrefix(first.Data, " ")
		}
	} else if pendingList != "" {
		line["list"] = pendingList
	}

	for c := first; c != nil; c = c.NextSibling {
		if err := w.node(c, attrs, pendingList, depth+1); err != nil {
			return err
		}
	}
	w.push(Op{Insert: "\n", Attributes: line.orNil()})
	return nil
}

// checkboxInput reports whether n is a task-list checkbox and its state.
func checkboxInput(n *html.Node) (ok, checked bool) {
	if n == nil || n.Type != html.ElementNode || n.Data != "input" {
		return false, false
	}
	if attrValue(n, "type") != "checkbox" {
		return false, false
	}
	return true, hasAttr(n, "checked")
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
