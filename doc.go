// Package md2delta converts user-authored Markdown into Quill-style
// rich-text delta documents and normalizes media references between their
// long-form URL and canonical shortcode forms.
//
// # Quick Start
//
// Create a service and convert:
//
//	svc := md2delta.New()
//	delta, degraded, err := svc.Convert("**Bold** text")
//	if err != nil {
//	    log.Fatal(err) // only ErrInvalidUnicode
//	}
//	out, _ := json.Marshal(delta)
//
// The degraded flag reports that the content could not be fully interpreted
// and the unstyled fallback delta was returned; callers should log such
// conversions.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Shortcode stripping (StripShortcodes) and emptiness check
//  2. Markdown parsing via Goldmark (GFM plus the ==highlight==,
//     <u>underline</u>, :::video::: and :::audio::: inline extensions)
//  3. Document tree construction and whitespace normalization
//  4. Recursive attribute-inheriting tree walk producing the operations
//  5. Trailing-newline finalization
//
// Every delta ends with a newline string insert; text operations carry
// style attributes only when the context is non-empty; media embeds never
// carry attributes.
//
// # Media References
//
// The shortcode wire format is ![[media:<uuid>]]. CollapseMediaReferences
// rewrites video placeholders and markdown image references to shortcodes,
// optionally resolving pre-upload local sources through a caller-supplied
// map; StripShortcodes removes shortcodes before conversion.
package md2delta
