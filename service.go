package md2delta

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
)

// defaultMaxDepth bounds tree recursion for pathologically nested input.
const defaultMaxDepth = 512

// Service converts user-authored Markdown into rich-text delta documents.
// A Service holds no state between calls and is safe for concurrent use.
type Service struct {
	md       goldmark.Markdown
	maxDepth int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxDepth caps the document tree depth the walker descends. Deeper
// documents fall back to an unstyled delta. Panics if n <= 0 (programmer
// error, similar to time.NewTicker).
func WithMaxDepth(n int) Option {
	if n <= 0 {
		panic("md2delta: WithMaxDepth requires a positive depth")
	}
	return func(s *Service) { s.maxDepth = n }
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithMaxDepth).
func New(opts ...Option) *Service {
	s := &Service{md: newMarkdown(), maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert transforms markdown into a delta document. degraded reports that
// the content could not be fully interpreted and the fallback delta (the
// shortcode-stripped text as a single unstyled insert plus the mandatory
// trailing newline) was returned instead; callers should flag such output.
// The only error returned is ErrInvalidUnicode; for every other input
// Convert produces a well-formed delta.
func (s *Service) Convert(markdown string) (delta Delta, degraded bool, err error) {
	if err := validateUnicode(markdown); err != nil {
		return Delta{}, false, err
	}

	text := StripShortcodes(strings.TrimRightFunc(markdown, unicode.IsSpace))
	if text == "" {
		return newlineDelta(), false, nil
	}

	ops, err := s.convertOps(text)
	if err != nil {
		return Delta{Ops: []Op{{Insert: text}, {Insert: "\n"}}}, true, nil
	}
	return Delta{Ops: finalize(ops)}, false, nil
}

// convertOps runs parse, tree construction and the walk. The deferred
// recover turns any panic in the parser stack into a conversion error so
// Convert's fallback covers every input.
func (s *Service) convertOps(text string) (ops []Op, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrConversion, r)
		}
	}()

	fragment, err := s.toHTML(text)
	if err != nil {
		return nil, err
	}
	body, err := parseDocumentTree(fragment)
	if err != nil {
		return nil, err
	}
	w := &walker{maxDepth: s.maxDepth}
	if err := w.walkRoots(body); err != nil {
		return nil, err
	}
	return w.ops, nil
}

// finalize guarantees the document ends with a newline string insert.
func finalize(ops []Op) []Op {
	if len(ops) == 0 {
		return []Op{{Insert: "\n"}}
	}
	if s, ok := ops[len(ops)-1].Insert.(string); !ok || !strings.HasSuffix(s, "\n") {
		ops = append(ops, Op{Insert: "\n"})
	}
	return ops
}

func newlineDelta() Delta {
	return Delta{Ops: []Op{{Insert: "\n"}}}
}

// validateUnicode rejects the noncharacter code points U+FFFE and U+FFFF
// before any other handling.
func validateUnicode(s string) error {
	for i, r := range s {
		if r == '\uFFFE' || r == '\uFFFF' {
			return fmt.Errorf("%w: U+%04X at byte %d", ErrInvalidUnicode, r, i)
		}
	}
	return nil
}
