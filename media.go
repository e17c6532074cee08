package md2delta

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// uuidShape matches the textual form of a UUID v4, case-insensitive.
const uuidShape = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// Precompiled patterns for the media reference rewrites.
var (
	// Canonical shortcode: ![[media:<uuid>]]
	shortcodePattern = regexp.MustCompile(`!\[\[media:(` + uuidShape + `)\]\]`)

	// Punctuation escaped by the upstream text-to-markdown pass.
	escapedPunct = regexp.MustCompile(`\\([{}:-])`)

	// Video placeholder: :::video <url>:::
	videoPlaceholderPattern = regexp.MustCompile(`:::video[ \t]+([^\n]+?)[ \t]*:::`)

	// Markdown image reference: ![alt](<url>)
	markdownImagePattern = regexp.MustCompile(`!\[[^\]\n]*\]\(([^)\n]+)\)`)

	// Resource-API path with optional thumbnail/signed suffixes.
	mediaAPIPathPattern = regexp.MustCompile(`/api/v1/media/(` + uuidShape + `)(?:/thumbnail)?(?:/signed)?`)

	bareUUIDPattern     = regexp.MustCompile(uuidShape)
	mediaIDParamPattern = regexp.MustCompile(`[?&]media_id=([^&\s]+)`)
)

// videoUploadFailedMarker replaces video placeholders whose local-only
// source never got an id assigned.
const videoUploadFailedMarker = "> **Video Upload Failed**"

// Shortcode returns the canonical in-text reference for a media id.
func Shortcode(id string) string {
	return "![[media:" + id + "]]"
}

// StripShortcodes removes every canonical media shortcode from the text,
// leaving the surrounding text untouched. The existence probe avoids
// rewriting (and reallocating) shortcode-free text.
func StripShortcodes(text string) string {
	if !strings.Contains(text, "![[media:") {
		return text
	}
	return shortcodePattern.ReplaceAllString(text, "")
}

// CollapseMediaReferences rewrites every recognized media reference in text
// to canonical shortcode form. sources optionally maps transient local
// source strings (blob handles, file paths, URLs) to assigned media ids.
//
// The rewrite is an ordered pipeline of independent passes; later passes
// depend on the unescaping and rewrites of earlier ones, so the order is
// load-bearing.
func CollapseMediaReferences(text string, sources map[string]string) string {
	if len(sources) == 0 &&
		!videoPlaceholderPattern.MatchString(text) &&
		!markdownImagePattern.MatchString(text) {
		return text
	}

	// The upstream text-to-markdown pass escapes these; restore them before
	// pattern matching.
	out := escapedPunct.ReplaceAllString(text, "$1")

	// Video placeholders whose source is known to the map.
	if len(sources) > 0 {
		out = replaceVideoPlaceholders(out, func(src string) (string, bool) {
			if id, ok := lookupSource(src, sources); ok {
				return Shortcode(id), true
			}
			return "", false
		})
	}

	// Video placeholders that embed a resource-API path directly.
	out = replaceVideoPlaceholders(out, func(src string) (string, bool) {
		if m := mediaAPIPathPattern.FindStringSubmatch(src); m != nil {
			return Shortcode(m[1]), true
		}
		return "", false
	})

	// Markdown images pointing at a resource-API path.
	out = markdownImagePattern.ReplaceAllStringFunc(out, func(match string) string {
		if m := mediaAPIPathPattern.FindStringSubmatch(imageSource(match)); m != nil {
			return Shortcode(m[1])
		}
		return match
	})

	// Remaining markdown images whose source is known to the map.
	if len(sources) > 0 {
		out = markdownImagePattern.ReplaceAllStringFunc(out, func(match string) string {
			if id, ok := lookupSource(imageSource(match), sources); ok {
				return Shortcode(id)
			}
			return match
		})
	}

	// Final video re-scan: map lookup, then the local-only failure marker.
	out = replaceVideoPlaceholders(out, func(src string) (string, bool) {
		if len(sources) > 0 {
			if id, ok := lookupSource(src, sources); ok {
				return Shortcode(id), true
			}
		}
		if strings.HasPrefix(src, "blob:") || strings.HasPrefix(src, "file:") {
			return videoUploadFailedMarker, true
		}
		return "", false
	})

	return out
}

// replaceVideoPlaceholders rewrites each :::video url::: whose URL the
// replace callback accepts.
func replaceVideoPlaceholders(text string, replace func(src string) (string, bool)) string {
	return videoPlaceholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		src := videoPlaceholderPattern.FindStringSubmatch(match)[1]
		if replacement, ok := replace(src); ok {
			return replacement
		}
		return match
	})
}

// imageSource extracts the URL from a markdown image match, dropping any
// trailing title.
func imageSource(match string) string {
	src := markdownImagePattern.FindStringSubmatch(match)[1]
	if i := strings.IndexAny(src, " \t"); i >= 0 {
		src = src[:i]
	}
	return src
}

// lookupSource resolves a candidate source against the map: exact match
// first, then path-normalized comparison against every key.
func lookupSource(src string, sources map[string]string) (string, bool) {
	if id, ok := sources[src]; ok {
		return id, true
	}
	want := normalizeSource(src)
	if want == "" {
		return "", false
	}
	for key, id := range sources {
		if normalizeSource(key) == want {
			return id, true
		}
	}
	return "", false
}

// normalizeSource reduces a source string to a comparable path: rooted paths
// are truncated at the query string, http(s) URLs reduce to their path
// component. Anything else has no normalized form and cannot match.
func normalizeSource(s string) string {
	if strings.HasPrefix(s, "/") {
		if i := strings.Index(s, "?"); i >= 0 {
			return s[:i]
		}
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return u.Path
	}
	return ""
}

// ExtractMediaID pulls a media id out of an arbitrary source string: a
// media_id query parameter wins, then a resource-API path, then the first
// bare UUID found anywhere.
func ExtractMediaID(s string) (string, bool) {
	if m := mediaIDParamPattern.FindStringSubmatch(s); m != nil && m[1] != "" {
		return m[1], true
	}
	if m := mediaAPIPathPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if candidate := bareUUIDPattern.FindString(s); candidate != "" {
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// ReplaceMediaIDs rewrites legacy media ids to their reassigned ids inside
// shortcodes and resource-API URLs, and collapses legacy video placeholders
// and markdown images still pointing at an old id straight to the new
// shortcode.
func ReplaceMediaIDs(content string, idMap map[string]string) string {
	updated := content
	for oldID, newID := range idMap {
		quoted := regexp.QuoteMeta(oldID)

		shortcode := regexp.MustCompile(`(?i)(!\[\[media:)` + quoted + `(\]\])`)
		updated = shortcode.ReplaceAllString(updated, "${1}"+newID+"${2}")

		// The id must be the whole path segment: followed by a further
		// segment or the end of the text, never by a query string or
		// surrounding markdown punctuation.
		apiURL := regexp.MustCompile(`(?i)(/api/v1/media/)` + quoted + `(/|$)`)
		updated = apiURL.ReplaceAllString(updated, "${1}"+newID+"${2}")

		videoRef := regexp.MustCompile(`(?i):::video\s+\S*` + quoted + `\S*\s*:::`)
		updated = videoRef.ReplaceAllString(updated, Shortcode(newID))

		imageRef := regexp.MustCompile(`(?i)!\[[^\]]*\]\(\S*` + quoted + `\S*\)`)
		updated = imageRef.ReplaceAllString(updated, Shortcode(newID))
	}
	return updated
}
