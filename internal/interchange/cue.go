// Package interchange moves text tracks in and out of the subtitle formats
// other tools understand: SubRip, WebVTT, and Advanced SubStation Alpha.
package interchange

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// represents single timed cue of a subtitle document
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// represents a parsed subtitle document
type Document struct {
	Cues   []Cue
	Format Format
}

// represents supported interchange formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
