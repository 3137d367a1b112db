package movie

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/logging"
	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

const projectVersion = 1

var ErrProjectLocked = errors.New("project file is locked by another process")

type projectFile struct {
	Version    int                 `json:"version"`
	TimeScale  int64               `json:"time_scale"`
	Tracks     []projectTrack      `json:"tracks"`
	References []chapter.Reference `json:"references,omitempty"`
}

type projectTrack struct {
	track.Track
	Defaults *textsample.Format `json:"defaults,omitempty"`
	Samples  []projectSample    `json:"samples,omitempty"`
}

// projectSample stores text as the length-prefixed sample payload.
type projectSample struct {
	StartTime int64  `json:"start_time"`
	Duration  int64  `json:"duration"`
	Payload   []byte `json:"payload"`
	textsample.Format
}

func lockPath(path string) string {
	return path + ".lock"
}

// Save writes the movie as a JSON project file and marks it clean.
func (m *Movie) Save(path string) error {
	project, err := m.snapshot()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	lock := flock.New(lockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectLocked, path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	m.MarkClean()
	m.log.Infow("Saved project", "path", path, "tracks", len(project.Tracks))
	return nil
}

// Load reads a project file written by Save.
func Load(path string, log *logging.Logger) (*Movie, error) {
	lock := flock.New(lockPath(path))
	ok, err := lock.TryRLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectLocked, path)
	}
	data, err := os.ReadFile(path)
	_ = lock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var project projectFile
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}
	if project.Version != projectVersion {
		return nil, fmt.Errorf(
			"unsupported project version %d (want %d)",
			project.Version,
			projectVersion,
		)
	}

	m, err := New(project.TimeScale, log)
	if err != nil {
		return nil, err
	}
	for _, pt := range project.Tracks {
		if err := m.restoreTrack(pt); err != nil {
			return nil, fmt.Errorf("track %s: %w", pt.ID, err)
		}
	}
	for _, ref := range project.References {
		if _, ok := m.Track(ref.Content); !ok {
			return nil, fmt.Errorf("%w: reference from unknown track %s",
				chapter.ErrInvalidTrack, ref.Content)
		}
		if _, ok := m.Track(ref.Chapter); !ok {
			return nil, fmt.Errorf("%w: reference to unknown track %s",
				chapter.ErrInvalidTrack, ref.Chapter)
		}
		if err := m.chapters.SetChapterTrack(ref.Content, ref.Chapter); err != nil {
			return nil, err
		}
	}

	m.MarkClean()
	m.log.Debugw("Loaded project", "path", path, "tracks", len(project.Tracks))
	return m, nil
}

func (m *Movie) snapshot() (projectFile, error) {
	project := projectFile{
		Version:    projectVersion,
		TimeScale:  m.timeScale,
		References: m.chapters.References(),
	}
	for _, t := range m.Tracks() {
		pt := projectTrack{Track: t}
		if store, ok := m.Store(t.ID); ok {
			defaults := store.Defaults()
			pt.Defaults = &defaults
			for i, s := range store.Samples() {
				payload, err := textsample.EncodeText(s.Text)
				if err != nil {
					return projectFile{}, fmt.Errorf("track %s sample %d: %w", t.ID, i, err)
				}
				pt.Samples = append(pt.Samples, projectSample{
					StartTime: s.StartTime,
					Duration:  s.Duration,
					Payload:   payload,
					Format:    s.Format,
				})
			}
		}
		project.Tracks = append(project.Tracks, pt)
	}
	return project, nil
}

func (m *Movie) restoreTrack(pt projectTrack) error {
	if pt.ID.IsNone() {
		return fmt.Errorf("%w: missing track id", chapter.ErrInvalidTrack)
	}
	if _, err := m.AddTrack(pt.Track); err != nil {
		return err
	}
	if pt.Kind != track.KindText {
		if len(pt.Samples) > 0 {
			return fmt.Errorf("%s track carries text samples", pt.Kind)
		}
		return nil
	}

	store, err := m.textStore(pt.ID)
	if err != nil {
		return err
	}
	if pt.Defaults != nil {
		store.SetDefaults(*pt.Defaults)
	}
	for i, ps := range pt.Samples {
		text, err := textsample.DecodeText(ps.Payload)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		err = store.Append(textsample.TextSample{
			StartTime: ps.StartTime,
			Duration:  ps.Duration,
			Text:      text,
			Format:    ps.Format,
		})
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return nil
}
