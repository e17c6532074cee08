package main

import (
	"errors"

	"github.com/journiv/md2delta/internal/mediamap"
)

// Exit codes for the md2delta CLI. The surrounding system dispatches on
// them: 0 carries a delta (or normalized text) on stdout, 1 means the
// invocation itself was malformed, 2 means the content was rejected
// (invalid Unicode or an unrecovered conversion error).
const (
	ExitSuccess = 0
	ExitUsage   = 1
	ExitContent = 2
)

// exitCodeFor maps an error to the process exit status. It uses errors.Is
// to check wrapped errors, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUnexpectedArgs) ||
		errors.Is(err, ErrConflictingModes) ||
		errors.Is(err, mediamap.ErrMapNotFound) ||
		errors.Is(err, mediamap.ErrMapParse) ||
		errors.Is(err, mediamap.ErrInvalidMediaID) {
		return ExitUsage
	}

	return ExitContent
}
