package interchange

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ASSStyle is the single style written into ASS output.
type ASSStyle struct {
	Title    string
	FontName string
	FontSize int
}

var DefaultASSStyle = ASSStyle{
	Title:    "chaptrack text track",
	FontName: "Arial",
	FontSize: 20,
}

// WriteFile writes doc to path in the format named by the extension.
func WriteFile(doc *Document, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	if err := Write(file, doc, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes doc in format.
func Write(w io.Writer, doc *Document, format Format) error {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatSRT:
		for i, cue := range doc.Cues {
			fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
				i+1,
				formatClock(cue.Start, ','),
				formatClock(cue.End, ','),
				cue.Text)
		}
	case FormatVTT:
		bw.WriteString("WEBVTT\n\n")
		for i, cue := range doc.Cues {
			fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
				i+1,
				formatClock(cue.Start, '.'),
				formatClock(cue.End, '.'),
				cue.Text)
		}
	case FormatASS:
		writeASS(bw, doc, DefaultASSStyle)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return bw.Flush()
}

func writeASS(w *bufio.Writer, doc *Document, style ASSStyle) {
	w.WriteString("[Script Info]\n")
	fmt.Fprintf(w, "Title: %s\n", style.Title)
	w.WriteString("ScriptType: v4.00+\n")
	w.WriteString("Collisions: Normal\n")
	w.WriteString("PlayDepth: 0\n\n")

	w.WriteString("[V4+ Styles]\n")
	w.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(w, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		style.FontName, style.FontSize)

	w.WriteString("[Events]\n")
	w.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, cue := range doc.Cues {
		fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSClock(cue.Start),
			formatASSClock(cue.End),
			strings.ReplaceAll(cue.Text, "\n", `\N`))
	}
}

// HH:MM:SS<sep>mmm
func formatClock(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		ms/3_600_000, ms/60_000%60, ms/1000%60, sep, ms%1000)
}

// H:MM:SS.CC
func formatASSClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d.Milliseconds() / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d",
		cs/360_000, cs/6000%60, cs/100%60, cs%100)
}
