package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/chaptrack/internal/chapter"
)

func TestWriteFFMetadata(t *testing.T) {
	chapters := []chapter.Chapter{
		{Index: 1, StartTime: 0, EndTime: 10, Title: "Intro"},
		{Index: 2, StartTime: 10, EndTime: 25, Title: "A=B; #1\\x"},
	}

	var buf bytes.Buffer
	if err := WriteFFMetadata(&buf, chapters, 600); err != nil {
		t.Fatalf("WriteFFMetadata error: %v", err)
	}

	want := ";FFMETADATA1\n" +
		"\n[CHAPTER]\nTIMEBASE=1/600\nSTART=0\nEND=10\ntitle=Intro\n" +
		"\n[CHAPTER]\nTIMEBASE=1/600\nSTART=10\nEND=25\ntitle=A\\=B\\; \\#1\\\\x\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteFFMetadataErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFFMetadata(&buf, nil, 0); err == nil {
		t.Error("expected error for zero time scale")
	}
	bad := []chapter.Chapter{{Index: 1, StartTime: 10, EndTime: 10}}
	if err := WriteFFMetadata(&buf, bad, 600); err == nil {
		t.Error("expected error for empty chapter")
	}
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "tags": {"language": "eng"}},
			{"index": 2, "codec_type": "subtitle", "codec_name": "subrip",
			 "tags": {"language": "fre", "title": "Chapters"}}
		],
		"chapters": [
			{"start_time": "0.000000", "end_time": "12.500000", "tags": {"title": "Intro"}}
		],
		"format": {"duration": "3600.250000"}
	}`)

	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe error: %v", err)
	}
	if info.Duration != 3600*time.Second+250*time.Millisecond {
		t.Errorf("duration = %v", info.Duration)
	}
	if len(info.Streams) != 3 {
		t.Fatalf("got %d streams, want 3", len(info.Streams))
	}
	if v, ok := info.VideoStream(); !ok || v.Width != 1920 || v.Height != 1080 {
		t.Errorf("video stream = %+v, %v", v, ok)
	}
	text := info.TextStreams()
	if len(text) != 1 || text[0].Index != 2 || text[0].Language != "fre" || text[0].Title != "Chapters" {
		t.Errorf("text streams = %+v", text)
	}
	if len(info.Chapters) != 1 || info.Chapters[0].End != 12500*time.Millisecond ||
		info.Chapters[0].Title != "Intro" {
		t.Errorf("chapters = %+v", info.Chapters)
	}

	if _, err := parseProbe([]byte(`{"format": {"duration": "abc"}}`)); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := parseProbe([]byte(`not json`)); err == nil {
		t.Error("expected error for bad json")
	}
}

func TestStreamArgs(t *testing.T) {
	tools := Tools{FFmpeg: "/opt/ffmpeg", FFprobe: "/opt/ffprobe"}

	embed := strings.Join(tools.embedStream("in.mkv", "meta.txt", "out.mkv").GetArgs(), " ")
	for _, want := range []string{
		"-i in.mkv -i meta.txt",
		"-map 0",
		"-map_chapters 1",
		"-map_metadata 0",
		"-codec copy",
		"out.mkv",
	} {
		if !strings.Contains(embed, want) {
			t.Errorf("embed args %q missing %q", embed, want)
		}
	}

	extract := strings.Join(tools.extractStream("in.mkv", 1, "out.srt").GetArgs(), " ")
	if !strings.Contains(extract, "-map 0:s:1") || !strings.Contains(extract, "out.srt") {
		t.Errorf("extract args = %q", extract)
	}
}

func TestEmbedAndProbeIntegration(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	tools, err := Resolve("", "")
	if err != nil {
		t.Skipf("ffmpeg tools unavailable: %v", err)
	}

	ctx := context.Background()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mkv")
	gen := exec.CommandContext(ctx, tools.FFmpeg,
		"-v", "quiet",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=3",
		"-c:v", "ffv1",
		input,
	)
	if err := gen.Run(); err != nil {
		t.Skipf("cannot generate test movie: %v", err)
	}

	chapters := []chapter.Chapter{
		{Index: 1, StartTime: 0, EndTime: 600, Title: "Intro"},
		{Index: 2, StartTime: 600, EndTime: 1800, Title: "Chapter 1"},
	}
	output := filepath.Join(dir, "out.mkv")
	if err := tools.EmbedChapters(ctx, input, chapters, 600, output); err != nil {
		t.Fatalf("EmbedChapters error: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	info, err := tools.Probe(ctx, output)
	if err != nil {
		t.Fatalf("Probe error: %v", err)
	}
	if len(info.Chapters) != 2 || info.Chapters[1].Title != "Chapter 1" {
		t.Errorf("chapters = %+v", info.Chapters)
	}
	if info.Chapters[1].Start != time.Second {
		t.Errorf("chapter 2 start = %v, want 1s", info.Chapters[1].Start)
	}
}
