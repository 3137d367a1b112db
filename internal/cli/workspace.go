package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/chaptrack/internal/interchange"
	"github.com/mgpai22/chaptrack/internal/media"
	"github.com/mgpai22/chaptrack/internal/movie"
	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

// projectExt marks files that hold a saved movie rather than a subtitle
// document.
const projectExt = ".chaptrack"

// workspace is a movie with a video content track and its chapter track.
type workspace struct {
	movie   *movie.Movie
	content track.ID
	chapter track.ID
}

func isProject(path string) bool {
	return strings.EqualFold(filepath.Ext(path), projectExt)
}

// openWorkspace loads a project file, or builds a fresh movie around a
// subtitle document whose cues become the chapters.
func openWorkspace(path string) (*workspace, error) {
	if isProject(path) {
		m, err := movie.Load(path, logger)
		if err != nil {
			return nil, err
		}
		chapterID, ok := m.ChapterTrack()
		if !ok {
			return nil, fmt.Errorf("project %s has no chapter track", path)
		}
		w := &workspace{movie: m, chapter: chapterID}
		if content, ok := m.FirstTrackOfKind(track.KindVideo, true); ok {
			w.content = content.ID
		}
		return w, nil
	}

	doc, err := interchange.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chapter file: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newWorkspace(doc, base, contentTrack(nil))
}

// contentTrack describes the video track chapters refer to, sized from the
// probed movie when there is one.
func contentTrack(info *media.Info) track.Track {
	t := track.Track{
		Name:          "content",
		Kind:          track.KindVideo,
		Enabled:       true,
		Width:         640,
		Height:        480,
		TimeScale:     cfg.TimeScale,
		FrameDuration: max(cfg.TimeScale/24, 1),
	}
	if info != nil {
		if v, ok := info.VideoStream(); ok && v.Width > 0 && v.Height > 0 {
			t.Width, t.Height = v.Width, v.Height
		}
	}
	return t
}

func newWorkspace(doc *interchange.Document, name string, content track.Track) (*workspace, error) {
	m, err := movie.New(cfg.TimeScale, logger)
	if err != nil {
		return nil, err
	}
	contentID, err := m.AddTrack(content)
	if err != nil {
		return nil, err
	}
	chapterID, err := m.AddTrack(track.Track{
		Name:      name,
		Kind:      track.KindText,
		Enabled:   true,
		Width:     content.Width,
		Height:    movie.TextTrackHeight,
		TimeScale: cfg.TimeScale,
	})
	if err != nil {
		return nil, err
	}

	store, _ := m.Store(chapterID)
	if err := interchange.Fill(store, doc); err != nil {
		return nil, err
	}
	if err := m.SetTextTrackAsChapterTrack(chapterID, track.KindVideo, true); err != nil {
		return nil, err
	}
	m.MarkClean()

	logger.Debugw("Built chapter movie",
		"chapters", store.Len(),
		"time_scale", cfg.TimeScale,
	)
	return &workspace{movie: m, content: contentID, chapter: chapterID}, nil
}

func (w *workspace) store() *textsample.Store {
	s, _ := w.movie.Store(w.chapter)
	return s
}

// timeScale is the media time scale of the chapter track.
func (w *workspace) timeScale() int64 {
	t, _ := w.movie.Track(w.chapter)
	return t.TimeScale
}

// save writes the workspace as a project or as a subtitle document,
// depending on the extension of path.
func (w *workspace) save(path string) error {
	if isProject(path) {
		return w.movie.Save(path)
	}
	format, err := interchange.FormatFromPath(path)
	if err != nil {
		return err
	}
	doc, err := interchange.FromStore(w.store(), format)
	if err != nil {
		return err
	}
	if err := interchange.WriteFile(doc, path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	w.movie.MarkClean()
	return nil
}

// derivedPath puts tag between the base name and extension of path.
func derivedPath(path, tag, ext string) string {
	if ext == "" {
		ext = filepath.Ext(path)
	}
	return fmt.Sprintf("%s.%s%s", strings.TrimSuffix(path, filepath.Ext(path)), tag, ext)
}

// parseClock accepts Go durations ("90s", "1m30s") and clock times
// ("1:30", "0:01:30.500").
func parseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: use a duration like 90s or a clock like 1:30.5", s)
	}
	var total time.Duration
	for i, p := range parts {
		var unit time.Duration
		switch len(parts) - i {
		case 3:
			unit = time.Hour
		case 2:
			unit = time.Minute
		default:
			secs, err := strconv.ParseFloat(p, 64)
			if err != nil || secs < 0 || secs >= 60 {
				return 0, fmt.Errorf("invalid seconds %q in %q", p, s)
			}
			total += time.Duration(secs * float64(time.Second))
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (unit == time.Minute && len(parts) == 3 && n > 59) {
			return 0, fmt.Errorf("invalid field %q in %q", p, s)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

func resolveTools(ctx context.Context) (media.Tools, error) {
	if cfg.FFmpeg.AutoDownload {
		return media.ResolveOrInstall(ctx, cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath, "")
	}
	return media.Resolve(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
}
