package movie

import (
	"fmt"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/track"
)

// SetTextTrackAsChapterTrack makes textID the chapter track of the first
// enabled track of kind, or clears that track's reference.
func (m *Movie) SetTextTrackAsChapterTrack(
	textID track.ID,
	kind track.Kind,
	isChapter bool,
) error {
	if _, err := m.textStore(textID); err != nil {
		return err
	}
	target, ok := m.FirstTrackOfKind(kind, true)
	if !ok {
		return fmt.Errorf("%w: no enabled %s track", ErrNoTargetTrack, kind)
	}

	var err error
	if isChapter {
		err = m.chapters.SetChapterTrack(target.ID, textID)
	} else {
		err = m.chapters.ClearChapterTrack(target.ID)
	}
	if err != nil {
		return err
	}
	m.markDirty()

	m.log.Debugw("Updated chapter reference",
		"content", target.ID,
		"chapter", textID,
		"set", isChapter,
	)
	return nil
}

// TrackKindHasChapterTrack reports whether the first enabled track of kind
// has a chapter track.
func (m *Movie) TrackKindHasChapterTrack(kind track.Kind) bool {
	target, ok := m.FirstTrackOfKind(kind, true)
	if !ok {
		return false
	}
	return m.chapters.HasChapterTrack(target.ID)
}

// HasChapterTrack reports whether any enabled track has a chapter track.
func (m *Movie) HasChapterTrack() bool {
	_, ok := m.ChapterTrack()
	return ok
}

// ChapterTrack returns the chapter track of the first enabled track that has
// one.
func (m *Movie) ChapterTrack() (track.ID, bool) {
	for _, t := range m.Tracks() {
		if !t.Enabled {
			continue
		}
		if id, ok := m.chapters.ChapterTrack(t.ID); ok {
			return id, true
		}
	}
	return track.None, false
}

// IsChapterTrack reports whether another track in the movie refers to id as
// its chapter track.
func (m *Movie) IsChapterTrack(id track.ID) bool {
	return m.chapters.IsChapterTrack(id, m.trackIDs())
}

// MovieChapters lists the chapters of the movie's chapter track.
func (m *Movie) MovieChapters() ([]chapter.Chapter, error) {
	id, ok := m.ChapterTrack()
	if !ok {
		return nil, fmt.Errorf("%w: movie has no chapter track", chapter.ErrInvalidTrack)
	}
	return m.chapters.Chapters(id)
}

// SetHREFTrack names the track so that it is, or is not, an HREF track.
func (m *Movie) SetHREFTrack(id track.ID, href bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.findLocked(id)
	if t == nil {
		return fmt.Errorf("%w: %s", chapter.ErrInvalidTrack, id)
	}
	t.SetHREF(href)
	m.dirty = true
	return nil
}

func (m *Movie) IsHREFTrack(id track.ID) bool {
	t, ok := m.Track(id)
	return ok && t.IsHREF()
}
