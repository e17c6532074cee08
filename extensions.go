package md2delta

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Parser and renderer priorities. Underline must run before goldmark's raw
// HTML parser (400), which shares the '<' trigger and would otherwise
// swallow the opening tag.
const (
	priorityUnderlineParser   = 300
	priorityHighlightParser   = 500
	priorityVideoParser       = 500
	priorityAudioParser       = 550
	priorityExtensionRenderer = 500
)

// Inline span patterns. All captures are non-greedy so the shortest
// enclosed span wins, and none of them can match an empty capture, which is
// how an empty span falls back to literal text.
var (
	highlightSpan = regexp.MustCompile(`^==(.+?)==`)
	underlineSpan = regexp.MustCompile(`^<u>(.+?)</u>`)
	videoSpan     = regexp.MustCompile(`^:::video[ \t]+(.+?)[ \t]*:::`)
	audioSpan     = regexp.MustCompile(`^:::audio[ \t]+(.+?)[ \t]*:::`)
)

// KindHighlight is the node kind of highlighted spans.
var KindHighlight = ast.NewNodeKind("Highlight")

// highlightNode is an inline span rendered as a <mark> element.
type highlightNode struct {
	ast.BaseInline
}

func (n *highlightNode) Kind() ast.NodeKind { return KindHighlight }

func (n *highlightNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindUnderline is the node kind of underlined spans.
var KindUnderline = ast.NewNodeKind("Underline")

// underlineNode is an inline span rendered as a <u> element.
type underlineNode struct {
	ast.BaseInline
}

func (n *underlineNode) Kind() ast.NodeKind { return KindUnderline }

func (n *underlineNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindMediaPlaceholder is the node kind of video/audio placeholders.
var KindMediaPlaceholder = ast.NewNodeKind("MediaPlaceholder")

// mediaPlaceholderNode is an inline :::video/:::audio reference rendered as
// a <video>/<audio> element with a src attribute.
type mediaPlaceholderNode struct {
	ast.BaseInline
	MediaKind string
	Source    []byte
}

func (n *mediaPlaceholderNode) Kind() ast.NodeKind { return KindMediaPlaceholder }

func (n *mediaPlaceholderNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"MediaKind": n.MediaKind,
		"Source":    string(n.Source),
	}, nil)
}

// spanParser matches a delimited span on the current line and wraps the
// captured text in a new element node. Matching is line-local; an empty or
// missing capture is not a match, so the base parser treats the sequence as
// literal text.
type spanParser struct {
	trigger byte
	pattern *regexp.Regexp
	wrap    func() ast.Node
}

func (p *spanParser) Trigger() []byte { return []byte{p.trigger} }

func (p *spanParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	m := p.pattern.FindSubmatchIndex(line)
	if m == nil || m[2] == m[3] {
		return nil
	}
	node := p.wrap()
	node.AppendChild(node, ast.NewTextSegment(text.NewSegment(seg.Start+m[2], seg.Start+m[3])))
	block.Advance(m[1])
	return node
}

// mediaParser matches a :::video/:::audio placeholder and records the
// captured URL on the node instead of emitting it as child text.
type mediaParser struct {
	mediaKind string
	pattern   *regexp.Regexp
}

func (p *mediaParser) Trigger() []byte { return []byte{':'} }

func (p *mediaParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := p.pattern.FindSubmatchIndex(line)
	if m == nil || m[2] == m[3] {
		return nil
	}
	node := &mediaPlaceholderNode{
		MediaKind: p.mediaKind,
		Source:    append([]byte(nil), line[m[2]:m[3]]...),
	}
	block.Advance(m[1])
	return node
}

// extensionHTMLRenderer renders the extension nodes back to the HTML-like
// elements the tree walker is keyed on.
type extensionHTMLRenderer struct{}

func (r *extensionHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHighlight, r.renderHighlight)
	reg.Register(KindUnderline, r.renderUnderline)
	reg.Register(KindMediaPlaceholder, r.renderMediaPlaceholder)
}

func (r *extensionHTMLRenderer) renderHighlight(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<mark>")
	} else {
		_, _ = w.WriteString("</mark>")
	}
	return ast.WalkContinue, nil
}

func (r *extensionHTMLRenderer) renderUnderline(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<u>")
	} else {
		_, _ = w.WriteString("</u>")
	}
	return ast.WalkContinue, nil
}

func (r *extensionHTMLRenderer) renderMediaPlaceholder(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	mp := n.(*mediaPlaceholderNode)
	_, _ = w.WriteString("<" + mp.MediaKind + " src=\"")
	_, _ = w.Write(util.EscapeHTML(mp.Source))
	_, _ = w.WriteString("\"></" + mp.MediaKind + ">")
	return ast.WalkSkipChildren, nil
}

type highlightExtension struct{}

// Highlight enables ==text== spans, parsed into <mark> elements.
var Highlight goldmark.Extender = &highlightExtension{}

func (e *highlightExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(
		&spanParser{trigger: '=', pattern: highlightSpan, wrap: func() ast.Node { return &highlightNode{} }},
		priorityHighlightParser)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(
		&extensionHTMLRenderer{}, priorityExtensionRenderer)))
}

type underlineExtension struct{}

// Underline enables <u>text</u> spans, parsed into <u> elements.
var Underline goldmark.Extender = &underlineExtension{}

func (e *underlineExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(
		&spanParser{trigger: '<', pattern: underlineSpan, wrap: func() ast.Node { return &underlineNode{} }},
		priorityUnderlineParser)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(
		&extensionHTMLRenderer{}, priorityExtensionRenderer)))
}

type videoPlaceholderExtension struct{}

// VideoPlaceholder enables :::video url::: references, parsed into <video>
// elements carrying the URL as their src attribute.
var VideoPlaceholder goldmark.Extender = &videoPlaceholderExtension{}

func (e *videoPlaceholderExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(
		&mediaParser{mediaKind: "video", pattern: videoSpan}, priorityVideoParser)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(
		&extensionHTMLRenderer{}, priorityExtensionRenderer)))
}

type audioPlaceholderExtension struct{}

// AudioPlaceholder enables :::audio url::: references, parsed into <audio>
// elements carrying the URL as their src attribute.
var AudioPlaceholder goldmark.Extender = &audioPlaceholderExtension{}

func (e *audioPlaceholderExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(
		&mediaParser{mediaKind: "audio", pattern: audioSpan}, priorityAudioParser)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(
		&extensionHTMLRenderer{}, priorityExtensionRenderer)))
}
