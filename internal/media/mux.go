package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/chaptrack/internal/chapter"
)

// ExtractText writes subtitle stream n (counted among subtitle streams) of
// input to output. The output extension picks the subtitle format.
func (t Tools) ExtractText(ctx context.Context, input string, n int, output string) error {
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("movie file not found: %s", input)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := t.extractStream(input, n, output).Run()
	if err != nil {
		return fmt.Errorf("ffmpeg text extraction failed: %w", err)
	}
	return nil
}

func (t Tools) extractStream(input string, n int, output string) *ffmpeg.Stream {
	return ffmpeg.Input(input).
		Output(output, ffmpeg.KwArgs{
			"map": fmt.Sprintf("0:s:%d", n),
		}).
		OverWriteOutput().
		SetFfmpegPath(t.FFmpeg)
}

// EmbedChapters copies input to output with its chapters replaced by
// chapters. Stream data is copied, not re-encoded.
func (t Tools) EmbedChapters(
	ctx context.Context,
	input string,
	chapters []chapter.Chapter,
	timeScale int64,
	output string,
) error {
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("movie file not found: %s", input)
	}

	meta, err := os.CreateTemp("", "chaptrack-*.ffmeta")
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer func() { _ = os.Remove(meta.Name()) }()

	if err := WriteFFMetadata(meta, chapters, timeScale); err != nil {
		_ = meta.Close()
		return err
	}
	if err := meta.Close(); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.embedStream(input, meta.Name(), output).Run(); err != nil {
		return fmt.Errorf("ffmpeg chapter embedding failed: %w", err)
	}
	return nil
}

// embedStream passes the movie as an extra -i ahead of the metadata input:
// ffmpeg-go maps every stream of each input node, and the metadata input
// has none.
func (t Tools) embedStream(input, metaPath, output string) *ffmpeg.Stream {
	return ffmpeg.Input(metaPath, ffmpeg.KwArgs{"i": input}).
		Output(output, ffmpeg.KwArgs{
			"map":          "0",
			"map_metadata": "0",
			"map_chapters": "1",
			"codec":        "copy",
		}).
		OverWriteOutput().
		SetFfmpegPath(t.FFmpeg)
}
