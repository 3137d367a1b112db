package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed [movie_file] [chapter_file]",
	Short: "Write chapters into a movie file",
	Long: `Copy a movie file with its chapters replaced by a chapter track.

Streams are copied, not re-encoded. The chapter track may come from an
SRT, VTT or ASS file or from a .chaptrack project.

Examples:
  chaptrack embed movie.mkv movie.chapters.srt
  chaptrack embed movie.mp4 movie.chaptrack -o movie.chaptered.mp4`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	moviePath, chapterPath := args[0], args[1]
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		outputPath = derivedPath(moviePath, "chaptered", "")
	}
	absIn, _ := filepath.Abs(moviePath)
	absOut, _ := filepath.Abs(outputPath)
	if absIn == absOut {
		return fmt.Errorf("output must differ from the input movie")
	}

	w, err := openWorkspace(chapterPath)
	if err != nil {
		return err
	}
	chapters, err := w.movie.MovieChapters()
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return fmt.Errorf("chapter track is empty")
	}

	ctx := context.Background()
	tools, err := resolveTools(ctx)
	if err != nil {
		return err
	}

	logger.Infow("Embedding chapters",
		"movie", moviePath,
		"chapters", len(chapters),
		"output", outputPath,
	)

	if err := tools.EmbedChapters(
		ctx,
		moviePath,
		chapters,
		w.timeScale(),
		outputPath,
	); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Chapters embedded: %s\n", absOut)
	fmt.Fprintf(cmd.OutOrStdout(), "  Chapters: %d\n", len(chapters))
	return nil
}
