// Package mediamap loads the local-source-to-media-id map consumed by the
// media reference normalizer.
package mediamap

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/journiv/md2delta/internal/yamlutil"
)

// Sentinel errors for map loading.
var (
	ErrMapNotFound    = errors.New("media map file not found")
	ErrMapParse       = errors.New("failed to parse media map")
	ErrInvalidMediaID = errors.New("media map value is not a valid media id")
)

// Load reads a YAML or JSON object mapping transient local source strings
// (blob handles, file paths, URLs) to assigned media ids. Every id must
// have the UUID textual shape.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, path)
		}
		return nil, fmt.Errorf("reading media map: %w", err)
	}

	sources := map[string]string{}
	if err := yamlutil.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapParse, err)
	}

	for source, id := range sources {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidMediaID, source, id)
		}
	}
	return sources, nil
}
