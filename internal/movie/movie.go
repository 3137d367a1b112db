// Package movie ties tracks, their text samples, and the chapter index
// together the way a movie container does, without reading or writing any
// container format.
package movie

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/logging"
	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/timebase"
	"github.com/mgpai22/chaptrack/internal/track"
)

const (
	// DefaultTimeScale is the movie time scale used when none is given.
	DefaultTimeScale = 600

	// TextTrackHeight is the height of text tracks created by AddTextTrack.
	TextTrackHeight = 15

	// AllTextTracks passed to RemoveTextTrack removes every text track.
	AllTextTracks = 0
)

var (
	ErrBadTrackIndex = errors.New("bad track index")
	ErrNoTargetTrack = errors.New("no track of the requested kind")
)

// Movie is an ordered set of tracks plus the text samples of its text tracks
// and the chapter references between them.
type Movie struct {
	mu        sync.Mutex
	timeScale int64
	tracks    []*track.Track
	stores    map[track.ID]*textsample.Store
	chapters  *chapter.Index
	dirty     bool
	now       int64
	log       *logging.Logger
}

func New(timeScale int64, log *logging.Logger) (*Movie, error) {
	if timeScale <= 0 {
		return nil, fmt.Errorf("movie time scale must be positive, got %d", timeScale)
	}
	if log == nil {
		log = logging.Nop()
	}
	m := &Movie{
		timeScale: timeScale,
		stores:    make(map[track.ID]*textsample.Store),
		log:       log,
	}
	m.chapters = chapter.NewIndex(m)
	return m, nil
}

func (m *Movie) TimeScale() int64 {
	return m.timeScale
}

// Chapters exposes the chapter reference index.
func (m *Movie) Chapters() *chapter.Index {
	return m.chapters
}

// Store implements chapter.StoreSource.
func (m *Movie) Store(id track.ID) (*textsample.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	return s, ok
}

// AddTrack adds a track. Text tracks get an empty sample store. A missing
// ID is assigned.
func (m *Movie) AddTrack(t track.Track) (track.ID, error) {
	if t.TimeScale <= 0 {
		return track.None, fmt.Errorf(
			"track time scale must be positive, got %d",
			t.TimeScale,
		)
	}
	if t.ID.IsNone() {
		t.ID = track.NewID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(t.ID) != nil {
		return track.None, fmt.Errorf("track %s already in movie", t.ID)
	}
	if t.Kind == track.KindText {
		store, err := textsample.NewStore(t.ID, t.TimeScale, textsample.Format{
			Justification: textsample.JustifyCenter,
			BoundingBox:   textsample.Rect{Right: t.Width, Bottom: t.Height},
			ClipMode:      textsample.ClipToBox,
		})
		if err != nil {
			return track.None, err
		}
		store.SetEnabled(t.Enabled)
		store.MarkClean()
		m.stores[t.ID] = store
	}

	added := t
	m.tracks = append(m.tracks, &added)
	m.dirty = true
	return t.ID, nil
}

// Tracks returns copies of all tracks in movie order.
func (m *Movie) Tracks() []track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]track.Track, len(m.tracks))
	for i, t := range m.tracks {
		out[i] = *t
	}
	return out
}

// TextTracks returns copies of the text tracks in movie order.
func (m *Movie) TextTracks() []track.Track {
	var out []track.Track
	for _, t := range m.Tracks() {
		if t.Kind == track.KindText {
			out = append(out, t)
		}
	}
	return out
}

func (m *Movie) Track(id track.ID) (track.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.findLocked(id); t != nil {
		return *t, true
	}
	return track.Track{}, false
}

// FirstTrackOfKind returns the first track of kind, optionally only among
// enabled tracks.
func (m *Movie) FirstTrackOfKind(kind track.Kind, enabledOnly bool) (track.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.firstOfKindLocked(kind, enabledOnly); t != nil {
		return *t, true
	}
	return track.Track{}, false
}

func (m *Movie) SetTrackEnabled(id track.ID, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.findLocked(id)
	if t == nil {
		return fmt.Errorf("%w: %s", chapter.ErrInvalidTrack, id)
	}
	t.Enabled = enabled
	if s, ok := m.stores[id]; ok {
		s.SetEnabled(enabled)
	}
	m.dirty = true
	return nil
}

// RemoveTrack deletes a track and every chapter reference from or to it.
func (m *Movie) RemoveTrack(id track.ID) error {
	m.mu.Lock()
	i := slices.IndexFunc(m.tracks, func(t *track.Track) bool {
		return t.ID == id
	})
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", chapter.ErrInvalidTrack, id)
	}
	m.tracks = slices.Delete(m.tracks, i, i+1)
	delete(m.stores, id)
	m.dirty = true
	m.mu.Unlock()

	m.chapters.RemoveTrack(id)
	m.log.Debugw("Removed track", "track", id)
	return nil
}

// Dirty reports whether the movie or any text track changed since the last
// MarkClean.
func (m *Movie) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty {
		return true
	}
	for _, s := range m.stores {
		if s.Dirty() {
			return true
		}
	}
	return false
}

func (m *Movie) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = false
	for _, s := range m.stores {
		s.MarkClean()
	}
}

func (m *Movie) markDirty() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// Time is the current movie time.
func (m *Movie) Time() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// SetTime moves the movie to t and forwards the time to every enabled text
// track, which notifies observers of samples that become current.
func (m *Movie) SetTime(t int64) error {
	m.mu.Lock()
	m.now = t
	var stores []*textsample.Store
	for _, tr := range m.tracks {
		if s, ok := m.stores[tr.ID]; ok && tr.Enabled {
			stores = append(stores, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stores {
		mediaTime, err := timebase.Rescale(t, m.timeScale, s.TimeScale())
		if err != nil {
			return err
		}
		s.SetCurrentTime(mediaTime)
	}
	return nil
}

// ToMediaTime converts a movie time to the media time of a track.
func (m *Movie) ToMediaTime(id track.ID, movieTime int64) (int64, error) {
	t, ok := m.Track(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", chapter.ErrInvalidTrack, id)
	}
	return timebase.Rescale(movieTime, m.timeScale, t.TimeScale)
}

// ToMovieTime converts a media time of a track to movie time.
func (m *Movie) ToMovieTime(id track.ID, mediaTime int64) (int64, error) {
	t, ok := m.Track(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", chapter.ErrInvalidTrack, id)
	}
	return timebase.Rescale(mediaTime, t.TimeScale, m.timeScale)
}

func (m *Movie) textStore(id track.ID) (*textsample.Store, error) {
	s, ok := m.Store(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a text track", chapter.ErrInvalidTrack, id)
	}
	return s, nil
}

func (m *Movie) findLocked(id track.ID) *track.Track {
	for _, t := range m.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *Movie) firstOfKindLocked(kind track.Kind, enabledOnly bool) *track.Track {
	for _, t := range m.tracks {
		if t.Kind != kind {
			continue
		}
		if enabledOnly && !t.Enabled {
			continue
		}
		return t
	}
	return nil
}

func (m *Movie) trackIDs() []track.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]track.ID, len(m.tracks))
	for i, t := range m.tracks {
		ids[i] = t.ID
	}
	return ids
}
