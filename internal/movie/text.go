package movie

import (
	"fmt"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/timebase"
	"github.com/mgpai22/chaptrack/internal/track"
)

// AddTextTrack builds a text track from texts, where texts[i] lasts
// frames[i] frames of the first track of kind. The new track takes that
// track's width and media time scale. With asChapter set it becomes the
// chapter track of that track.
func (m *Movie) AddTextTrack(
	texts []string,
	frames []int,
	kind track.Kind,
	asChapter bool,
) (track.ID, error) {
	if len(texts) != len(frames) {
		return track.None, fmt.Errorf(
			"got %d texts but %d frame counts",
			len(texts),
			len(frames),
		)
	}

	target, ok := m.FirstTrackOfKind(kind, false)
	if !ok {
		return track.None, fmt.Errorf("%w: %s", ErrNoTargetTrack, kind)
	}
	if target.FrameDuration <= 0 {
		return track.None, fmt.Errorf(
			"target %s track has no frame duration",
			kind,
		)
	}

	format := textsample.Format{
		Justification: textsample.JustifyCenter,
		BoundingBox: textsample.Rect{
			Right:  target.Width,
			Bottom: target.Height,
		},
		ClipMode: textsample.ClipToBox,
	}

	samples := make([]textsample.TextSample, 0, len(texts))
	var start int64
	for i, text := range texts {
		if frames[i] <= 0 {
			return track.None, fmt.Errorf(
				"text %d: frame count must be positive, got %d",
				i,
				frames[i],
			)
		}
		duration, err := timebase.Rescale(
			target.FrameDuration*int64(frames[i]),
			m.timeScale,
			target.TimeScale,
		)
		if err != nil {
			return track.None, fmt.Errorf("text %d: %w", i, err)
		}
		if duration <= 0 {
			return track.None, fmt.Errorf(
				"text %d: %d frames round to zero media time",
				i,
				frames[i],
			)
		}
		samples = append(samples, textsample.TextSample{
			StartTime: start,
			Duration:  duration,
			Text:      textsample.PascalText(text),
			Format:    format,
		})
		start += duration
	}

	id, err := m.AddTrack(track.Track{
		Kind:      track.KindText,
		Enabled:   true,
		Width:     target.Width,
		Height:    TextTrackHeight,
		TimeScale: target.TimeScale,
	})
	if err != nil {
		return track.None, err
	}
	store, err := m.textStore(id)
	if err != nil {
		return track.None, err
	}
	store.SetDefaults(format)
	for _, s := range samples {
		if err := store.Append(s); err != nil {
			_ = m.RemoveTrack(id)
			return track.None, err
		}
	}

	if asChapter {
		if err := m.chapters.SetChapterTrack(target.ID, id); err != nil {
			_ = m.RemoveTrack(id)
			return track.None, err
		}
	}

	m.log.Infow("Added text track",
		"track", id,
		"samples", len(samples),
		"target", target.ID,
		"chapter", asChapter,
	)
	return id, nil
}

// RemoveTextTrack removes the index-th text track (1-based), or all text
// tracks when index is AllTextTracks.
func (m *Movie) RemoveTextTrack(index int) error {
	texts := m.TextTracks()

	if index == AllTextTracks {
		if len(texts) == 0 {
			return fmt.Errorf("%w: movie has no text tracks", ErrBadTrackIndex)
		}
		for _, t := range texts {
			if err := m.RemoveTrack(t.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if index < 1 || index > len(texts) {
		return fmt.Errorf(
			"%w: text track %d of %d",
			ErrBadTrackIndex,
			index,
			len(texts),
		)
	}
	return m.RemoveTrack(texts[index-1].ID)
}

// FindText searches a text track with f, advancing f past the hit.
func (m *Movie) FindText(
	id track.ID,
	pattern []byte,
	f *textsample.Finder,
) (textsample.Match, error) {
	store, err := m.textStore(id)
	if err != nil {
		return textsample.Match{}, err
	}
	return f.Next(store, pattern)
}

// SampleMovieTime returns the movie time at which sample index of a text
// track starts.
func (m *Movie) SampleMovieTime(id track.ID, index int) (int64, error) {
	store, err := m.textStore(id)
	if err != nil {
		return 0, err
	}
	s, err := store.Sample(index)
	if err != nil {
		return 0, err
	}
	return m.ToMovieTime(id, s.StartTime)
}

// EditSampleAt replaces the text of the sample shown at movieTime. The
// sample keeps its timing and takes the track's default format.
func (m *Movie) EditSampleAt(id track.ID, movieTime int64, text []byte) error {
	store, err := m.textStore(id)
	if err != nil {
		return err
	}
	mediaTime, err := m.ToMediaTime(id, movieTime)
	if err != nil {
		return err
	}
	index, err := store.FindSampleContaining(mediaTime)
	if err != nil {
		return err
	}
	if err := store.ReplaceSampleText(index, text); err != nil {
		return err
	}
	m.markDirty()

	m.log.Debugw("Edited text sample",
		"track", id,
		"index", index,
		"movie_time", movieTime,
	)
	return nil
}

// Observe registers o for sample events on a text track.
func (m *Movie) Observe(
	id track.ID,
	o textsample.SampleObserver,
) (func(), error) {
	store, err := m.textStore(id)
	if err != nil {
		return nil, err
	}
	return store.Observe(o), nil
}
