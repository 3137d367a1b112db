package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// movie file information
type Info struct {
	Path     string
	Duration time.Duration
	Streams  []Stream
	Chapters []ProbedChapter
}

type Stream struct {
	Index     int
	CodecType string
	CodecName string
	Language  string
	Title     string
	Width     int
	Height    int
}

// VideoStream returns the first video stream.
func (i *Info) VideoStream() (Stream, bool) {
	for _, s := range i.Streams {
		if s.CodecType == "video" {
			return s, true
		}
	}
	return Stream{}, false
}

// ProbedChapter is a chapter already present in the container.
type ProbedChapter struct {
	Start time.Duration
	End   time.Duration
	Title string
}

// TextStreams returns the subtitle streams in container order.
func (i *Info) TextStreams() []Stream {
	var out []Stream
	for _, s := range i.Streams {
		if s.CodecType == "subtitle" {
			out = append(out, s)
		}
	}
	return out
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Index     int               `json:"index"`
		CodecType string            `json:"codec_type"`
		CodecName string            `json:"codec_name"`
		Width     int               `json:"width"`
		Height    int               `json:"height"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
	Chapters []struct {
		StartTime string            `json:"start_time"`
		EndTime   string            `json:"end_time"`
		Tags      map[string]string `json:"tags"`
	} `json:"chapters"`
}

// Probe reads duration, streams, and chapters of a movie file.
func (t Tools) Probe(ctx context.Context, path string) (*Info, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	cmd := exec.CommandContext(ctx, t.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-show_chapters",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if probe.Format.Duration != "" {
		d, err := parseSeconds(probe.Format.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = d
	}
	for _, s := range probe.Streams {
		info.Streams = append(info.Streams, Stream{
			Index:     s.Index,
			CodecType: s.CodecType,
			CodecName: s.CodecName,
			Language:  s.Tags["language"],
			Title:     s.Tags["title"],
			Width:     s.Width,
			Height:    s.Height,
		})
	}
	for i, c := range probe.Chapters {
		start, err := parseSeconds(c.StartTime)
		if err != nil {
			return nil, fmt.Errorf("chapter %d start: %w", i+1, err)
		}
		end, err := parseSeconds(c.EndTime)
		if err != nil {
			return nil, fmt.Errorf("chapter %d end: %w", i+1, err)
		}
		info.Chapters = append(info.Chapters, ProbedChapter{
			Start: start,
			End:   end,
			Title: c.Tags["title"],
		})
	}
	return info, nil
}

func parseSeconds(s string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
