package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/chaptrack/internal/interchange"
	"github.com/mgpai22/chaptrack/internal/media"
	"github.com/mgpai22/chaptrack/internal/movie"
	"github.com/mgpai22/chaptrack/internal/track"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and inspect chaptrack project files",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [chapter_file]",
	Short: "Save a chapter file as a project",
	Long: `Build a movie with a video track and a chapter track loaded from an
SRT, VTT or ASS file, and save it as a .chaptrack project.

With --media the video track takes its size from the probed movie.

Examples:
  chaptrack project create movie.srt
  chaptrack project create movie.vtt --media movie.mkv -o movie.chaptrack`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectInfoCmd = &cobra.Command{
	Use:   "info [project_file]",
	Short: "Show the tracks of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectInfo,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectInfoCmd)

	projectCreateCmd.Flags().Bool("href", false, "Mark the chapter track as an HREF track")
	projectCreateCmd.Flags().String("media", "", "Movie file to size the video track from")
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	href, _ := cmd.Flags().GetBool("href")
	mediaPath, _ := cmd.Flags().GetString("media")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + projectExt
	}
	if !isProject(outputPath) {
		return fmt.Errorf("project files must end in %s", projectExt)
	}

	doc, err := interchange.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse chapter file: %w", err)
	}

	var info *media.Info
	if mediaPath != "" {
		ctx := context.Background()
		tools, err := resolveTools(ctx)
		if err != nil {
			return err
		}
		if info, err = tools.Probe(ctx, mediaPath); err != nil {
			return err
		}
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	w, err := newWorkspace(doc, base, contentTrack(info))
	if err != nil {
		return err
	}
	if href {
		if err := w.movie.SetHREFTrack(w.chapter, true); err != nil {
			return err
		}
	}
	if err := w.save(outputPath); err != nil {
		return err
	}

	logger.Infow("Created project",
		"input", inputPath,
		"output", outputPath,
		"chapters", w.store().Len(),
		"href", href,
	)

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Project created: %s\n", absOutput)
	return nil
}

func runProjectInfo(cmd *cobra.Command, args []string) error {
	m, err := movie.Load(args[0], logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Time scale: %d\n", m.TimeScale())
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Kind", "Name", "Enabled", "Size", "Time Scale", "Samples", "Role"},
		trackRows(m),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func trackRows(m *movie.Movie) [][]string {
	tracks := m.Tracks()
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		samples := ""
		if s, ok := m.Store(t.ID); ok {
			samples = strconv.Itoa(s.Len())
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(t.Kind),
			t.Name,
			strconv.FormatBool(t.Enabled),
			fmt.Sprintf("%dx%d", t.Width, t.Height),
			strconv.FormatInt(t.TimeScale, 10),
			samples,
			trackRole(m, t),
		})
	}
	return rows
}

func trackRole(m *movie.Movie, t track.Track) string {
	var roles []string
	if m.IsChapterTrack(t.ID) {
		roles = append(roles, "chapters")
	}
	if m.IsHREFTrack(t.ID) {
		roles = append(roles, "href")
	}
	if id, ok := m.Chapters().ChapterTrack(t.ID); ok {
		if ct, ok := m.Track(id); ok {
			roles = append(roles, "chaptered by "+ct.Name)
		}
	}
	return strings.Join(roles, ", ")
}
