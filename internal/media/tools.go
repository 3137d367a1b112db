// Package media drives the external ffmpeg and ffprobe binaries to read
// text streams out of movie files and write chapter lists back into them.
package media

import (
	"errors"
	"fmt"
	"os/exec"
)

var ErrToolNotFound = errors.New("ffmpeg tool not found")

type Tools struct {
	FFmpeg  string
	FFprobe string
}

// Resolve picks the ffmpeg and ffprobe binaries. Explicit paths win;
// empty ones are looked up on PATH.
func Resolve(ffmpegPath, ffprobePath string) (Tools, error) {
	var err error
	if ffmpegPath == "" {
		if ffmpegPath, err = exec.LookPath("ffmpeg"); err != nil {
			return Tools{}, fmt.Errorf("%w: ffmpeg: %v", ErrToolNotFound, err)
		}
	}
	if ffprobePath == "" {
		if ffprobePath, err = exec.LookPath("ffprobe"); err != nil {
			return Tools{}, fmt.Errorf("%w: ffprobe: %v", ErrToolNotFound, err)
		}
	}
	return Tools{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
