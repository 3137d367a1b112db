package chapter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

// Index maps content tracks to their chapter tracks.
type Index struct {
	mu     sync.Mutex
	refs   map[track.ID]track.ID
	stores StoreSource
}

func NewIndex(stores StoreSource) *Index {
	return &Index{
		refs:   make(map[track.ID]track.ID),
		stores: stores,
	}
}

// SetChapterTrack makes chapter the chapter track of content, replacing any
// earlier reference.
func (x *Index) SetChapterTrack(content, chapter track.ID) error {
	if content.IsNone() || chapter.IsNone() {
		return fmt.Errorf(
			"%w: cannot reference %s -> %s",
			ErrInvalidTrack,
			content,
			chapter,
		)
	}
	if content == chapter {
		return fmt.Errorf("%w: track %s cannot be its own chapter track",
			ErrInvalidTrack, content)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.refs[content] = chapter
	return nil
}

// ClearChapterTrack drops the reference of content, if any.
func (x *Index) ClearChapterTrack(content track.ID) error {
	if content.IsNone() {
		return fmt.Errorf("%w: none", ErrInvalidTrack)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.refs, content)
	return nil
}

func (x *Index) HasChapterTrack(content track.ID) bool {
	_, ok := x.ChapterTrack(content)
	return ok
}

func (x *Index) ChapterTrack(content track.ID) (track.ID, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	chapter, ok := x.refs[content]
	return chapter, ok
}

// IsChapterTrack reports whether any other track in all refers to id.
func (x *Index) IsChapterTrack(id track.ID, all []track.ID) bool {
	if id.IsNone() {
		return false
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, other := range all {
		if other == id {
			continue
		}
		if ref, ok := x.refs[other]; ok && ref == id {
			return true
		}
	}
	return false
}

// RemoveTrack drops every reference from or to id.
func (x *Index) RemoveTrack(id track.ID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.refs, id)
	for content, chapter := range x.refs {
		if chapter == id {
			delete(x.refs, content)
		}
	}
}

// References returns the reference table ordered by content track id.
func (x *Index) References() []Reference {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]Reference, 0, len(x.refs))
	for content, chapter := range x.refs {
		out = append(out, Reference{Content: content, Chapter: chapter})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Content.String() < out[j].Content.String()
	})
	return out
}

// ChapterCount is the number of samples in the chapter track; unknown tracks
// have no chapters.
func (x *Index) ChapterCount(chapterTrack track.ID) int {
	store, err := x.store(chapterTrack)
	if err != nil {
		return 0
	}
	count := 0
	for t, ok := store.NextSampleTime(-1); ok; t, ok = store.NextSampleTime(t) {
		count++
	}
	return count
}

// ChapterAt returns chapter index (1-based). It walks the track from the
// first sample, so repeated lookups should use Chapters instead.
func (x *Index) ChapterAt(chapterTrack track.ID, index int) (Chapter, error) {
	store, err := x.store(chapterTrack)
	if err != nil {
		return Chapter{}, err
	}
	sample, err := sampleAt(store, index)
	if err != nil {
		return Chapter{}, err
	}
	return Chapter{
		Index:     index,
		StartTime: sample.StartTime,
		EndTime:   sample.EndTime(),
		Title:     string(sample.Text),
	}, nil
}

// ChapterText returns a copy of the text of chapter index (1-based).
func (x *Index) ChapterText(chapterTrack track.ID, index int) ([]byte, error) {
	store, err := x.store(chapterTrack)
	if err != nil {
		return nil, err
	}
	sample, err := sampleAt(store, index)
	if err != nil {
		return nil, err
	}
	return sample.Text, nil
}

// Chapters returns every chapter of the track in time order.
func (x *Index) Chapters(chapterTrack track.ID) ([]Chapter, error) {
	store, err := x.store(chapterTrack)
	if err != nil {
		return nil, err
	}
	samples := store.Samples()
	chapters := make([]Chapter, len(samples))
	for i, s := range samples {
		chapters[i] = Chapter{
			Index:     i + 1,
			StartTime: s.StartTime,
			EndTime:   s.EndTime(),
			Title:     string(s.Text),
		}
	}
	return chapters, nil
}

func (x *Index) store(id track.ID) (*textsample.Store, error) {
	if id.IsNone() {
		return nil, fmt.Errorf("%w: none", ErrInvalidTrack)
	}
	if x.stores == nil {
		return nil, fmt.Errorf("%w: %s has no samples", ErrInvalidTrack, id)
	}
	store, ok := x.stores.Store(id)
	if !ok || store == nil {
		return nil, fmt.Errorf("%w: %s is not a text track", ErrInvalidTrack, id)
	}
	return store, nil
}

// sampleAt steps through sample start times the way a player steps through
// "next interesting time" edges.
func sampleAt(store *textsample.Store, index int) (textsample.TextSample, error) {
	if index < 1 {
		return textsample.TextSample{}, outOfRange(index, store.Len())
	}
	t, ok := store.NextSampleTime(-1)
	for n := 1; ok && n < index; n++ {
		t, ok = store.NextSampleTime(t)
	}
	if !ok {
		return textsample.TextSample{}, outOfRange(index, store.Len())
	}
	i, err := store.FindSampleContaining(t)
	if err != nil {
		return textsample.TextSample{}, err
	}
	return store.Sample(i)
}
