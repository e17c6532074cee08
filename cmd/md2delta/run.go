package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/journiv/md2delta"
	"github.com/journiv/md2delta/internal/mediamap"
)

// run reads the whole input and dispatches to the selected mode.
func run(flags *cliFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	if flags.version {
		fmt.Fprintln(stdout, Version)
		return nil
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	text := string(input)

	switch {
	case flags.strip:
		_, err := io.WriteString(stdout, md2delta.StripShortcodes(text))
		return err
	case flags.collapse:
		var sources map[string]string
		if flags.mediaMap != "" {
			sources, err = mediamap.Load(flags.mediaMap)
			if err != nil {
				return err
			}
			if flags.verbose {
				fmt.Fprintf(stderr, "media map: %d sources\n", len(sources))
			}
		}
		_, err := io.WriteString(stdout, md2delta.CollapseMediaReferences(text, sources))
		return err
	}

	delta, degraded, err := md2delta.New().Convert(text)
	if err != nil {
		return err
	}
	if degraded && !flags.quiet {
		fmt.Fprintln(stderr, "warning: content not fully interpreted; emitted fallback delta")
	}
	out, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("encoding delta: %w", err)
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}
