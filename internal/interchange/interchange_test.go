package interchange

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

func TestOpenSRTFile(t *testing.T) {
	content := "\ufeff1\n" + `00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	tmpDir := t.TempDir()
	srtPath := filepath.Join(tmpDir, "test.srt")
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, err := Open(srtPath)
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if doc.Format != FormatSRT {
		t.Errorf("expected format SRT, got %s", doc.Format)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}

	if doc.Cues[0].Start != 1*time.Second || doc.Cues[0].End != 4*time.Second {
		t.Errorf("cue 0: got %v --> %v", doc.Cues[0].Start, doc.Cues[0].End)
	}
	if doc.Cues[0].Text != "Hello, world!" {
		t.Errorf("cue 0: expected 'Hello, world!', got %q", doc.Cues[0].Text)
	}
	if doc.Cues[1].Start != 5500*time.Millisecond {
		t.Errorf("cue 1: expected start 5.5s, got %v", doc.Cues[1].Start)
	}
	expectedText := "This is a test.\nWith multiple lines."
	if doc.Cues[1].Text != expectedText {
		t.Errorf("cue 1: expected %q, got %q", expectedText, doc.Cues[1].Text)
	}
	if doc.Cues[2].Index != 3 {
		t.Errorf("cue 2: expected index 3, got %d", doc.Cues[2].Index)
	}
}

func TestReadVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions

NOTE this block
is skipped

1
00:00:01.000 --> 00:00:04.000 align:start
Hello, world!

00:05.500 --> 00:08.200
Short timestamps.

00:00:10.000 --> 00:00:12.500
No cue identifier.
`
	doc, err := Read(strings.NewReader(content), FormatVTT)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(doc.Cues), doc.Cues)
	}
	if doc.Cues[0].Text != "Hello, world!" {
		t.Errorf("cue 0: got %q", doc.Cues[0].Text)
	}
	if doc.Cues[1].Start != 5500*time.Millisecond || doc.Cues[1].End != 8200*time.Millisecond {
		t.Errorf("cue 1: got %v --> %v", doc.Cues[1].Start, doc.Cues[1].End)
	}
	if doc.Cues[2].Text != "No cue identifier." {
		t.Errorf("cue 2: got %q", doc.Cues[2].Text)
	}
}

func TestReadASS(t *testing.T) {
	content := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize
Style: Default,Arial,20

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\pos(100,200)}This has positioning.
Comment: 0,0:00:09.00,0:00:09.50,Default,,0,0,0,,ignored
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`
	doc, err := Read(strings.NewReader(content), FormatASS)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}

	want := []Cue{
		{1, time.Second, 4 * time.Second, "Hello, world!"},
		{2, 5500 * time.Millisecond, 8200 * time.Millisecond, "This has positioning."},
		{3, 10 * time.Second, 12500 * time.Millisecond, "Line with\nnewline."},
	}
	for i, w := range want {
		if doc.Cues[i] != w {
			t.Errorf("cue %d = %+v, want %+v", i, doc.Cues[i], w)
		}
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		content string
	}{
		{"ass without format", FormatASS, "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,,,,,,,x\n"},
		{"ass bad timestamp", FormatASS, "[Events]\nFormat: Start, End, Text\nDialogue: 1.00,0:00:02.00,x\n"},
		{"srt minutes out of range", FormatSRT, "1\n00:61:00,000 --> 00:62:00,000\nx\n"},
		{"unknown format", Format("txt"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.content), tt.format); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	txtPath := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(txtPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := Open(txtPath)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc := &Document{Cues: []Cue{
		{1, 0, 1500 * time.Millisecond, "Intro"},
		{2, 90 * time.Minute, 90*time.Minute + 10*time.Second, "Chapter 1\nPart two"},
	}}

	for _, format := range []Format{FormatSRT, FormatVTT, FormatASS} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+format.Extension())
			if err := WriteFile(doc, path); err != nil {
				t.Fatalf("WriteFile error: %v", err)
			}
			got, err := Open(path)
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			if len(got.Cues) != len(doc.Cues) {
				t.Fatalf("got %d cues, want %d", len(got.Cues), len(doc.Cues))
			}
			for i := range doc.Cues {
				if got.Cues[i] != doc.Cues[i] {
					t.Errorf("cue %d = %+v, want %+v", i, got.Cues[i], doc.Cues[i])
				}
			}
		})
	}
}

func TestWriteFormats(t *testing.T) {
	doc := &Document{Cues: []Cue{{1, 3723004 * time.Millisecond, 3723990 * time.Millisecond, "a\nb"}}}

	tests := []struct {
		format Format
		want   string
	}{
		{FormatSRT, "1\n01:02:03,004 --> 01:02:03,990\na\nb\n\n"},
		{FormatVTT, "WEBVTT\n\n1\n01:02:03.004 --> 01:02:03.990\na\nb\n\n"},
		{FormatASS, "Dialogue: 0,1:02:03.00,1:02:03.99,Default,,0,0,0,,a\\Nb\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, doc, tt.format); err != nil {
				t.Fatalf("Write error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestFillAndFromStore(t *testing.T) {
	store, err := textsample.NewStore(track.NewID(), 600, textsample.Format{
		Justification: textsample.JustifyCenter,
	})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	doc := &Document{Cues: []Cue{
		{1, 0, time.Second, "Intro"},
		{2, 2 * time.Second, 3500 * time.Millisecond, "Chapter 1"},
	}}
	if err := Fill(store, doc); err != nil {
		t.Fatalf("Fill error: %v", err)
	}

	samples := store.Samples()
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[1].StartTime != 1200 || samples[1].Duration != 900 {
		t.Errorf("sample 1 = (%d,%d), want (1200,900)", samples[1].StartTime, samples[1].Duration)
	}
	if samples[0].Justification != textsample.JustifyCenter {
		t.Error("filled samples should take the store defaults")
	}

	back, err := FromStore(store, FormatSRT)
	if err != nil {
		t.Fatalf("FromStore error: %v", err)
	}
	for i := range doc.Cues {
		if back.Cues[i] != doc.Cues[i] {
			t.Errorf("cue %d = %+v, want %+v", i, back.Cues[i], doc.Cues[i])
		}
	}
}

func TestFillRejectsOverlap(t *testing.T) {
	store, err := textsample.NewStore(track.NewID(), 1000, textsample.Format{})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	doc := &Document{Cues: []Cue{
		{1, 0, 2 * time.Second, "a"},
		{2, time.Second, 3 * time.Second, "b"},
	}}
	if err := Fill(store, doc); !errors.Is(err, textsample.ErrOrderingViolation) {
		t.Errorf("Fill error = %v, want ErrOrderingViolation", err)
	}

	empty := &Document{Cues: []Cue{{1, time.Second, time.Second, "zero"}}}
	if err := Fill(store, empty); !errors.Is(err, textsample.ErrInvalidDuration) {
		t.Errorf("zero-length cue error = %v, want ErrInvalidDuration", err)
	}
}

func TestFromChapters(t *testing.T) {
	chapters := []chapter.Chapter{
		{Index: 1, StartTime: 0, EndTime: 10, Title: "Intro"},
		{Index: 2, StartTime: 10, EndTime: 25, Title: "Chapter 1"},
	}
	doc, err := FromChapters(chapters, 10, FormatVTT)
	if err != nil {
		t.Fatalf("FromChapters error: %v", err)
	}
	if doc.Cues[1].Start != time.Second || doc.Cues[1].End != 2500*time.Millisecond {
		t.Errorf("cue 1 = %+v", doc.Cues[1])
	}
	if doc.Cues[1].Text != "Chapter 1" || doc.Format != FormatVTT {
		t.Errorf("doc = %+v", doc)
	}
}
