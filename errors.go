package md2delta

import "errors"

// Sentinel errors for library operations.
var (
	// ErrInvalidUnicode reports input carrying the noncharacter code points
	// U+FFFE or U+FFFF. It is the only error Convert surfaces to callers.
	ErrInvalidUnicode = errors.New("input contains forbidden code points")

	// Conversion errors. These never escape Convert; they route the pipeline
	// to its fallback delta and are reported via the degraded flag.
	ErrMarkdownParse = errors.New("markdown parsing failed")
	ErrDocumentParse = errors.New("document tree construction failed")
	ErrMaxDepth      = errors.New("document nesting exceeds maximum depth")
	ErrConversion    = errors.New("delta conversion failed")
)
