package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// Invocation errors.
var (
	ErrUnexpectedArgs   = errors.New("command-line arguments are not supported; pipe content on stdin")
	ErrConflictingModes = errors.New("--strip and --collapse are mutually exclusive")
)

// cliFlags holds all flags for the md2delta CLI.
type cliFlags struct {
	strip    bool
	collapse bool
	mediaMap string
	quiet    bool
	verbose  bool
	version  bool
}

// parseFlags parses the CLI flag set. Positional arguments are rejected:
// the tool is a pure stdin-to-stdout filter.
func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("md2delta", flag.ContinueOnError)
	f := &cliFlags{}

	fs.BoolVar(&f.strip, "strip", false, "strip media shortcodes from stdin and print the text")
	fs.BoolVar(&f.collapse, "collapse", false, "collapse media references on stdin to shortcodes")
	fs.StringVar(&f.mediaMap, "media-map", "", "YAML/JSON file mapping local sources to media ids (with --collapse)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress degraded-output warnings")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show conversion diagnostics")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w (got %q)", ErrUnexpectedArgs, fs.Args())
	}
	if f.strip && f.collapse {
		return nil, ErrConflictingModes
	}
	return f, nil
}
