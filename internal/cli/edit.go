package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/timebase"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [chapter_file]",
	Short: "Replace the title of the chapter shown at a time",
	Long: `Replace the title of the chapter that covers a point in the movie.

The chapter keeps its timing. Titles longer than 255 bytes are truncated.

Examples:
  chaptrack edit movie.srt --at 1:30 --text "The Chase"
  chaptrack edit movie.chaptrack --at 95s --text "Finale" -o movie.chaptrack`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("at", "", "Movie time inside the chapter (e.g. 90s, 1:30.5) (required)")
	editCmd.Flags().String("text", "", "New chapter title (required)")

	_ = editCmd.MarkFlagRequired("at")
	_ = editCmd.MarkFlagRequired("text")
}

func runEdit(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	atStr, _ := cmd.Flags().GetString("at")
	title, _ := cmd.Flags().GetString("text")
	outputPath, _ := cmd.Flags().GetString("output")

	at, err := parseClock(atStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = derivedPath(inputPath, "edited", "")
	}

	w, err := openWorkspace(inputPath)
	if err != nil {
		return err
	}
	movieTime, err := timebase.FromDuration(at, w.movie.TimeScale())
	if err != nil {
		return err
	}
	if err := w.movie.EditSampleAt(w.chapter, movieTime, textsample.PascalText(title)); err != nil {
		return fmt.Errorf("no chapter at %s: %w", formatClock(at), err)
	}

	logger.Infow("Edited chapter",
		"input", inputPath,
		"output", outputPath,
		"at", formatClock(at),
	)

	if err := w.save(outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Chapter updated: %s\n", absOutput)
	return nil
}
