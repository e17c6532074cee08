package md2delta

import (
	"encoding/json"
	"fmt"
	"strings"
)

// List attribute values.
const (
	ListBullet    = "bullet"
	ListOrdered   = "ordered"
	ListChecked   = "checked"
	ListUnchecked = "unchecked"
)

// Attributes is the style context carried by an insert operation and
// inherited down the document tree during conversion. Each element works on
// its own copy, so siblings never observe each other's keys. Values are
// bools (bold, italic, underline, strike, highlight, blockquote, code,
// code-block), ints (header) or strings (list, link).
type Attributes map[string]any

// clone returns an independent copy for a child scope.
func (a Attributes) clone() Attributes {
	c := make(Attributes, len(a)+1)
	for k, v := range a {
		c[k] = v
	}
	return c
}

// orNil maps an empty context to nil so "attributes" is omitted from the
// serialized operation.
func (a Attributes) orNil() Attributes {
	if len(a) == 0 {
		return nil
	}
	return a
}

// Embed is a media insert payload keyed by media kind: image, video or
// audio. Embed operations never carry attributes.
type Embed map[string]string

// embedKinds orders media keys by priority when sanitizing an embed that
// carries more than one.
var embedKinds = []string{"image", "video", "audio"}

// Op is a single delta insert operation: either textual content with
// optional style attributes, or a media embed.
type Op struct {
	Insert     any        `json:"insert"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// UnmarshalJSON restores embed inserts as Embed values so deltas loaded
// from storage can be passed back through the media utilities.
func (o *Op) UnmarshalJSON(data []byte) error {
	var raw struct {
		Insert     json.RawMessage `json:"insert"`
		Attributes Attributes      `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Attributes = raw.Attributes

	var s string
	if err := json.Unmarshal(raw.Insert, &s); err == nil {
		o.Insert = s
		return nil
	}
	var e Embed
	if err := json.Unmarshal(raw.Insert, &e); err != nil {
		return fmt.Errorf("op insert must be a string or media embed: %w", err)
	}
	o.Insert = e
	return nil
}

// Delta is an ordered sequence of insert operations. A well-formed document
// is never empty and its final operation is a string insert ending in a
// newline.
type Delta struct {
	Ops []Op `json:"ops"`
}

// PlainText concatenates the document's string inserts, skipping embeds.
func (d Delta) PlainText() string {
	var b strings.Builder
	for _, op := range d.Ops {
		if s, ok := op.Insert.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// MediaSources returns every embed source in document order.
func (d Delta) MediaSources() []string {
	var sources []string
	for _, op := range d.Ops {
		embed, ok := op.Insert.(Embed)
		if !ok {
			continue
		}
		for _, kind := range embedKinds {
			if src, ok := embed[kind]; ok {
				sources = append(sources, src)
			}
		}
	}
	return sources
}

// TransformMedia returns a copy of the delta with every embed source passed
// through fn. fn reports whether the source should be replaced. Embeds that
// accumulated more than one media key are reduced to the highest-priority
// key (image over video over audio); text operations pass through untouched.
func (d Delta) TransformMedia(fn func(kind, source string) (string, bool)) Delta {
	ops := make([]Op, 0, len(d.Ops))
	for _, op := range d.Ops {
		embed, ok := op.Insert.(Embed)
		if !ok {
			ops = append(ops, op)
			continue
		}
		updated := make(Embed, len(embed))
		for kind, src := range embed {
			if replacement, ok := fn(kind, src); ok {
				updated[kind] = replacement
			} else {
				updated[kind] = src
			}
		}
		ops = append(ops, Op{Insert: sanitizeEmbed(updated)})
	}
	return Delta{Ops: ops}
}

// sanitizeEmbed keeps at most one media key per embed.
func sanitizeEmbed(e Embed) Embed {
	if len(e) <= 1 {
		return e
	}
	for _, kind := range embedKinds {
		if src, ok := e[kind]; ok {
			return Embed{kind: src}
		}
	}
	return e
}
