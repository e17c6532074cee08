package md2delta

import (
	"testing"

	"golang.org/x/net/html"
)

// collectText walks a normalized tree and gathers the surviving text nodes.
func collectText(n *html.Node) []string {
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			out = append(out, c.Data)
			continue
		}
		out = append(out, collectText(c)...)
	}
	return out
}

func TestParseDocumentTree(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{
			name:     "newline between blocks dropped",
			fragment: "<h1>Title</h1>\n<p>body</p>\n",
			want:     []string{"Title", "body"},
		},
		{
			name:     "list indentation dropped",
			fragment: "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
			want:     []string{"a", "b"},
		},
		{
			name:     "newline after br trimmed",
			fragment: "<p>line1<br/>\nline2</p>\n",
			want:     []string{"line1", "line2"},
		},
		{
			name:     "nested list keeps item text",
			fragment: "<ul>\n<li>a\n<ul>\n<li>b</li>\n</ul>\n</li>\n</ul>\n",
			want:     []string{"a", "b"},
		},
		{
			name:     "pre subtree untouched",
			fragment: "<pre><code>x := 1\n</code></pre>\n",
			want:     []string{"x := 1\n"},
		},
		{
			name:     "inline whitespace between spans survives",
			fragment: "<p><strong>a</strong> <em>b</em></p>\n",
			want:     []string{"a", " ", "b"},
		},
		{
			name:     "table scaffolding whitespace dropped",
			fragment: "<table>\n<thead>\n<tr>\n<th>h</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>c</td>\n</tr>\n</tbody>\n</table>\n",
			want:     []string{"h", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := parseDocumentTree(tt.fragment)
			if err != nil {
				t.Fatalf("parseDocumentTree() error: %v", err)
			}
			got := collectText(body)
			if len(got) != len(tt.want) {
				t.Fatalf("text nodes = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("text[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
