package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/chaptrack/internal/interchange"
	"github.com/mgpai22/chaptrack/internal/media"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [movie_file]",
	Short: "Import chapters from a movie file",
	Long: `Read chapters out of a movie file with ffmpeg.

Without --stream the container's own chapters are used; a movie without
chapters falls back to its first subtitle stream. With --stream N the Nth
subtitle stream (0-based) is extracted instead.

The output may be an SRT, VTT or ASS file, or a .chaptrack project.

Examples:
  chaptrack import movie.mkv
  chaptrack import movie.mkv --stream 1 -o chapters.vtt
  chaptrack import movie.mp4 -o movie.chaptrack`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int("stream", -1, "Subtitle stream to import (0-based)")
}

func runImport(cmd *cobra.Command, args []string) error {
	moviePath := args[0]
	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		outputPath = derivedPath(moviePath, "chapters", ".srt")
	}

	ctx := context.Background()
	tools, err := resolveTools(ctx)
	if err != nil {
		return err
	}

	info, err := tools.Probe(ctx, moviePath)
	if err != nil {
		return err
	}
	logger.Infow("Probed movie",
		"movie", moviePath,
		"duration", info.Duration,
		"chapters", len(info.Chapters),
		"text_streams", len(info.TextStreams()),
	)

	var doc *interchange.Document
	switch {
	case stream < 0 && len(info.Chapters) > 0:
		doc = containerChapters(info)
	default:
		if stream < 0 {
			stream = 0
		}
		if stream >= len(info.TextStreams()) {
			return fmt.Errorf(
				"movie has %d subtitle streams, cannot import stream %d",
				len(info.TextStreams()),
				stream,
			)
		}
		doc, err = extractDocument(ctx, tools, moviePath, stream)
		if err != nil {
			return err
		}
	}

	if isProject(outputPath) {
		base := strings.TrimSuffix(filepath.Base(moviePath), filepath.Ext(moviePath))
		w, err := newWorkspace(doc, base, contentTrack(info))
		if err != nil {
			return err
		}
		if err := w.save(outputPath); err != nil {
			return err
		}
	} else if err := interchange.WriteFile(doc, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Chapters imported: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Chapters: %d\n", len(doc.Cues))
	return nil
}

func containerChapters(info *media.Info) *interchange.Document {
	doc := &interchange.Document{Format: interchange.FormatSRT}
	for i, c := range info.Chapters {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		doc.Cues = append(doc.Cues, interchange.Cue{
			Index: i + 1,
			Start: c.Start,
			End:   c.End,
			Text:  title,
		})
	}
	return doc
}

func extractDocument(
	ctx context.Context,
	tools media.Tools,
	moviePath string,
	stream int,
) (*interchange.Document, error) {
	tmpDir, err := os.MkdirTemp("", "chaptrack-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	srtPath := filepath.Join(tmpDir, "stream.srt")
	if err := tools.ExtractText(ctx, moviePath, stream, srtPath); err != nil {
		return nil, err
	}
	return interchange.Open(srtPath)
}
