package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/timebase"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [chapter_file] [pattern]",
	Short: "Find text in chapter titles",
	Long: `Search the chapter titles of a chapter track.

The search starts in chapter --sample at byte --offset and by default
wraps around the track once. Defaults for direction, wrapping and case
come from the [search] section of the config file.

Examples:
  chaptrack search movie.srt "chapter"
  chaptrack search movie.srt "Intro" --backward --sample 3
  chaptrack search movie.chaptrack "part" --all --case-sensitive`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Bool("backward", false, "Search toward the start of the track")
	searchCmd.Flags().Bool("no-wrap", false, "Stop at the end of the track instead of wrapping")
	searchCmd.Flags().Bool("case-sensitive", false, "Match case exactly")
	searchCmd.Flags().Int("sample", 1, "Chapter to start in (1-based)")
	searchCmd.Flags().Int("offset", 0, "Byte offset in the start chapter")
	searchCmd.Flags().Bool("all", false, "List every match instead of the first")
}

// searchOptions merges the [search] config with the flags the user set.
func searchOptions(cmd *cobra.Command) (textsample.SearchOptions, error) {
	opts := textsample.SearchOptions{
		Wrap:          cfg.Search.Wrap,
		CaseSensitive: cfg.Search.CaseSensitive,
	}
	if cfg.Search.Backward {
		opts.Direction = textsample.Backward
	}

	flags := cmd.Flags()
	if flags.Changed("backward") {
		backward, _ := flags.GetBool("backward")
		opts.Direction = textsample.Forward
		if backward {
			opts.Direction = textsample.Backward
		}
	}
	if flags.Changed("no-wrap") {
		noWrap, _ := flags.GetBool("no-wrap")
		opts.Wrap = !noWrap
	}
	if flags.Changed("case-sensitive") {
		opts.CaseSensitive, _ = flags.GetBool("case-sensitive")
	}

	sample, _ := flags.GetInt("sample")
	if sample < 1 {
		return opts, fmt.Errorf("--sample must be at least 1, got %d", sample)
	}
	opts.Sample = sample - 1
	opts.Offset, _ = flags.GetInt("offset")
	if opts.Offset < 0 {
		return opts, fmt.Errorf("--offset must not be negative, got %d", opts.Offset)
	}
	return opts, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	pattern := []byte(args[1])
	all, _ := cmd.Flags().GetBool("all")

	opts, err := searchOptions(cmd)
	if err != nil {
		return err
	}

	w, err := openWorkspace(args[0])
	if err != nil {
		return err
	}

	finder := &textsample.Finder{Options: opts}
	matches, err := findMatches(w, pattern, finder, all)
	if errors.Is(err, textsample.ErrNotFound) {
		// bell, then the message
		fmt.Fprintf(cmd.ErrOrStderr(), "\aNo match for %q\n", args[1])
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debugw("Search complete",
		"pattern", args[1],
		"direction", opts.Direction,
		"matches", len(matches),
	)

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		row, err := matchRow(w, m)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Chapter", "Time", "Offset", "Title"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

// findMatches returns the first match, or with all set every match in scan
// order until the search runs out or comes back to the first hit.
func findMatches(
	w *workspace,
	pattern []byte,
	finder *textsample.Finder,
	all bool,
) ([]textsample.Match, error) {
	first, err := w.movie.FindText(w.chapter, pattern, finder)
	if err != nil {
		return nil, err
	}
	matches := []textsample.Match{first}
	if !all {
		return matches, nil
	}

	seen := map[textsample.Match]bool{first: true}
	for {
		next, err := w.movie.FindText(w.chapter, pattern, finder)
		if errors.Is(err, textsample.ErrNotFound) {
			return matches, nil
		}
		if err != nil {
			return nil, err
		}
		if seen[next] {
			return matches, nil
		}
		seen[next] = true
		matches = append(matches, next)
	}
}

func matchRow(w *workspace, m textsample.Match) ([]string, error) {
	movieTime, err := w.movie.SampleMovieTime(w.chapter, m.Sample)
	if err != nil {
		return nil, err
	}
	at, err := timebase.ToDuration(movieTime, w.movie.TimeScale())
	if err != nil {
		return nil, err
	}
	sample, err := w.store().Sample(m.Sample)
	if err != nil {
		return nil, err
	}
	return []string{
		strconv.Itoa(m.Sample + 1),
		formatClock(at),
		strconv.Itoa(m.Offset),
		string(sample.Text),
	}, nil
}
