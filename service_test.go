package md2delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// mustJSON marshals a delta for comparison; map keys marshal in sorted
// order, so the output is deterministic. HTML escaping is off so expected
// strings can spell out characters like '>' directly.
func mustJSON(t *testing.T, d Delta) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		t.Fatalf("marshal delta: %v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: `{"ops":[{"insert":"\n"}]}`,
		},
		{
			name:     "whitespace only",
			input:    "  \n\t ",
			expected: `{"ops":[{"insert":"\n"}]}`,
		},
		{
			name:     "shortcode only",
			input:    "![[media:550e8400-e29b-41d4-a716-446655440000]]",
			expected: `{"ops":[{"insert":"\n"}]}`,
		},
		{
			name:     "plain paragraph",
			input:    "hello",
			expected: `{"ops":[{"insert":"hello\n"}]}`,
		},
		{
			name:     "bold run merges into following text",
			input:    "**Bold** text",
			expected: `{"ops":[{"insert":"Bold","attributes":{"bold":true}},{"insert":" text\n"}]}`,
		},
		{
			name:     "italic",
			input:    "*x*",
			expected: `{"ops":[{"insert":"x","attributes":{"italic":true}},{"insert":"\n"}]}`,
		},
		{
			name:     "strikethrough",
			input:    "~~x~~",
			expected: `{"ops":[{"insert":"x","attributes":{"strike":true}},{"insert":"\n"}]}`,
		},
		{
			name:     "underline via inline html",
			input:    "<u>x</u>",
			expected: `{"ops":[{"insert":"x","attributes":{"underline":true}},{"insert":"\n"}]}`,
		},
		{
			name:     "highlight",
			input:    "==hi==",
			expected: `{"ops":[{"insert":"hi","attributes":{"highlight":true}},{"insert":"\n"}]}`,
		},
		{
			name:     "empty highlight stays literal",
			input:    "====",
			expected: `{"ops":[{"insert":"====\n"}]}`,
		},
		{
			name:     "nested emphasis inherits without leaking",
			input:    "**a *b*** c",
			expected: `{"ops":[{"insert":"a ","attributes":{"bold":true}},{"insert":"b","attributes":{"bold":true,"italic":true}},{"insert":" c\n"}]}`,
		},
		{
			name:     "header attributes on text and newline",
			input:    "# Title",
			expected: `{"ops":[{"insert":"Title","attributes":{"header":1}},{"insert":"\n","attributes":{"header":1}}]}`,
		},
		{
			name:     "header level three",
			input:    "### Sub",
			expected: `{"ops":[{"insert":"Sub","attributes":{"header":3}},{"insert":"\n","attributes":{"header":3}}]}`,
		},
		{
			name:     "blockquote doubles its newline",
			input:    "> quote",
			expected: `{"ops":[{"insert":"quote","attributes":{"blockquote":true}},{"insert":"\n","attributes":{"blockquote":true}},{"insert":"\n","attributes":{"blockquote":true}}]}`,
		},
		{
			name:     "inline code",
			input:    "`x`",
			expected: `{"ops":[{"insert":"x","attributes":{"code":true}},{"insert":"\n"}]}`,
		},
		{
			name:     "fenced code block",
			input:    "```go\nx := 1\n```",
			expected: `{"ops":[{"insert":"x := 1\n","attributes":{"code-block":true}},{"insert":"\n","attributes":{"code-block":true}}]}`,
		},
		{
			name:     "link",
			input:    "[click](https://example.com)",
			expected: `{"ops":[{"insert":"click","attributes":{"link":"https://example.com"}},{"insert":"\n"}]}`,
		},
		{
			name:     "image embed",
			input:    "![alt](https://example.com/i.png)",
			expected: `{"ops":[{"insert":{"image":"https://example.com/i.png"}},{"insert":"\n"}]}`,
		},
		{
			name:     "video placeholder embed",
			input:    ":::video https://example.com/v.mp4:::",
			expected: `{"ops":[{"insert":{"video":"https://example.com/v.mp4"}},{"insert":"\n"}]}`,
		},
		{
			name:     "audio placeholder embed",
			input:    ":::audio https://example.com/a.mp3:::",
			expected: `{"ops":[{"insert":{"audio":"https://example.com/a.mp3"}},{"insert":"\n"}]}`,
		},
		{
			name:     "bullet list with trailing container newline",
			input:    "- a\n- b",
			expected: `{"ops":[{"insert":"a"},{"insert":"\n","attributes":{"list":"bullet"}},{"insert":"b"},{"insert":"\n","attributes":{"list":"bullet"}},{"insert":"\n"}]}`,
		},
		{
			name:     "ordered list",
			input:    "1. a",
			expected: `{"ops":[{"insert":"a"},{"insert":"\n","attributes":{"list":"ordered"}},{"insert":"\n"}]}`,
		},
		{
			name:     "checked task item",
			input:    "- [x] done",
			expected: `{"ops":[{"insert":"done"},{"insert":"\n","attributes":{"list":"checked"}},{"insert":"\n"}]}`,
		},
		{
			name:     "unchecked task item",
			input:    "- [ ] todo",
			expected: `{"ops":[{"insert":"todo"},{"insert":"\n","attributes":{"list":"unchecked"}},{"insert":"\n"}]}`,
		},
		{
			name:     "soft break becomes newline in one run",
			input:    "line1\nline2",
			expected: `{"ops":[{"insert":"line1\nline2\n"}]}`,
		},
		{
			name:     "shortcode stripped before conversion",
			input:    "a ![[media:550e8400-e29b-41d4-a716-446655440000]]",
			expected: `{"ops":[{"insert":"a\n"}]}`,
		},
	}

	svc := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, degraded, err := svc.Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert(%q) error: %v", tt.input, err)
			}
			if degraded {
				t.Fatalf("Convert(%q) unexpectedly degraded", tt.input)
			}
			if got := mustJSON(t, delta); got != tt.expected {
				t.Errorf("Convert(%q)\n got  %s\n want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertRejectsForbiddenCodePoints(t *testing.T) {
	inputs := []string{
		"\uFFFE",
		"leading \uFFFF trailing",
		"\uFFFE\uFFFFinvalid unicode",
	}
	svc := New()
	for _, input := range inputs {
		_, degraded, err := svc.Convert(input)
		if !errors.Is(err, ErrInvalidUnicode) {
			t.Errorf("Convert(%q) error = %v, want ErrInvalidUnicode", input, err)
		}
		if degraded {
			t.Errorf("Convert(%q) reported degraded alongside the error", input)
		}
	}
}

func TestConvertFallbackOnExcessiveNesting(t *testing.T) {
	svc := New(WithMaxDepth(2))
	input := "> > > > deep"
	delta, degraded, err := svc.Convert(input)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if !degraded {
		t.Fatal("Convert() should degrade when nesting exceeds the depth cap")
	}
	want := `{"ops":[{"insert":"> > > > deep"},{"insert":"\n"}]}`
	if got := mustJSON(t, delta); got != want {
		t.Errorf("fallback delta = %s, want %s", got, want)
	}
}

func TestConvertAlwaysEndsWithNewline(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"# Title",
		"- [x] done\n- [ ] later",
		"**bold** and ==marked==",
		"| a | b |\n|---|---|\n| c | d |",
		"![i](https://e.com/i.png)",
		"> > nested",
		"text\n\n---\n\nmore",
	}
	svc := New()
	for _, input := range inputs {
		delta, _, err := svc.Convert(input)
		if err != nil {
			t.Fatalf("Convert(%q) error: %v", input, err)
		}
		if len(delta.Ops) == 0 {
			t.Fatalf("Convert(%q) produced empty ops", input)
		}
		last, ok := delta.Ops[len(delta.Ops)-1].Insert.(string)
		if !ok || !strings.HasSuffix(last, "\n") {
			t.Errorf("Convert(%q) final op %#v does not end with newline", input, delta.Ops[len(delta.Ops)-1])
		}
	}
}

func TestConvertEmbedsNeverCarryAttributes(t *testing.T) {
	svc := New()
	delta, _, err := svc.Convert("> ![i](https://e.com/i.png) **b**")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	for _, op := range delta.Ops {
		if _, ok := op.Insert.(Embed); ok && op.Attributes != nil {
			t.Errorf("embed op carries attributes: %#v", op)
		}
	}
}

func TestWithMaxDepthPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("WithMaxDepth(0) should panic")
		}
	}()
	WithMaxDepth(0)
}

func TestValidateUnicode(t *testing.T) {
	if err := validateUnicode("ordinary text, émoji 🙂"); err != nil {
		t.Errorf("validateUnicode() unexpected error: %v", err)
	}
	if err := validateUnicode("x\uFFFEy"); !errors.Is(err, ErrInvalidUnicode) {
		t.Errorf("validateUnicode() error = %v, want ErrInvalidUnicode", err)
	}
}
