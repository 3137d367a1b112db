package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/timebase"
	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters [chapter_file]",
	Short: "List the chapters of a chapter track",
	Long: `Load a chapter track from an SRT, VTT or ASS file, or from a project
file, and list its chapters.

Examples:
  chaptrack chapters movie.chapters.srt
  chaptrack chapters movie.chaptrack --json`,
	Args: cobra.ExactArgs(1),
	RunE: runChapters,
}

func init() {
	rootCmd.AddCommand(chaptersCmd)

	chaptersCmd.Flags().Bool("json", false, "Print chapters as JSON")
}

type chapterOutput struct {
	Index        int     `json:"index"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	StartSeconds float64 `json:"start_seconds"`
	Title        string  `json:"title"`
}

func runChapters(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	w, err := openWorkspace(args[0])
	if err != nil {
		return err
	}
	chapters, err := w.movie.MovieChapters()
	if err != nil {
		return err
	}
	rows, err := chapterRows(chapters, w.timeScale())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No chapters.")
		return nil
	}
	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{strconv.Itoa(r.Index), r.Start, r.End, r.Title}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "Title"},
		table,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func chapterRows(chapters []chapter.Chapter, timeScale int64) ([]chapterOutput, error) {
	rows := make([]chapterOutput, 0, len(chapters))
	for _, c := range chapters {
		start, err := timebase.ToDuration(c.StartTime, timeScale)
		if err != nil {
			return nil, err
		}
		end, err := timebase.ToDuration(c.EndTime, timeScale)
		if err != nil {
			return nil, err
		}
		rows = append(rows, chapterOutput{
			Index:        c.Index,
			Start:        formatClock(start),
			End:          formatClock(end),
			StartSeconds: start.Seconds(),
			Title:        c.Title,
		})
	}
	return rows, nil
}
