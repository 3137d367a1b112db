package chapter

import (
	"errors"
	"testing"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

type mapSource map[track.ID]*textsample.Store

func (m mapSource) Store(id track.ID) (*textsample.Store, bool) {
	s, ok := m[id]
	return s, ok
}

func newChapterStore(t *testing.T, samples ...textsample.TextSample) *textsample.Store {
	t.Helper()
	s, err := textsample.NewStore(track.NewID(), 600, textsample.Format{})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	for _, smp := range samples {
		if err := s.Append(smp); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	return s
}

func scenario(t *testing.T) (*Index, *textsample.Store) {
	t.Helper()
	store := newChapterStore(t,
		textsample.TextSample{StartTime: 0, Duration: 10, Text: []byte("Intro")},
		textsample.TextSample{StartTime: 10, Duration: 15, Text: []byte("Chapter 1")},
		textsample.TextSample{StartTime: 25, Duration: 20, Text: []byte("Chapter 2")},
	)
	return NewIndex(mapSource{store.TrackID(): store}), store
}

func TestReferenceLifecycle(t *testing.T) {
	x := NewIndex(nil)
	content, chapter, other := track.NewID(), track.NewID(), track.NewID()

	if x.HasChapterTrack(content) {
		t.Fatal("new index should have no references")
	}
	if err := x.SetChapterTrack(content, chapter); err != nil {
		t.Fatalf("SetChapterTrack error: %v", err)
	}
	if err := x.SetChapterTrack(content, chapter); err != nil {
		t.Fatalf("repeated SetChapterTrack should be idempotent: %v", err)
	}
	got, ok := x.ChapterTrack(content)
	if !ok || got != chapter {
		t.Errorf("ChapterTrack = %s, %v; want %s", got, ok, chapter)
	}

	if err := x.SetChapterTrack(content, other); err != nil {
		t.Fatal(err)
	}
	if got, _ := x.ChapterTrack(content); got != other {
		t.Errorf("latest reference should win, got %s", got)
	}

	if err := x.ClearChapterTrack(content); err != nil {
		t.Fatalf("ClearChapterTrack error: %v", err)
	}
	if x.HasChapterTrack(content) {
		t.Error("reference should be cleared")
	}
	if err := x.ClearChapterTrack(content); err != nil {
		t.Errorf("clearing a missing reference should be a no-op: %v", err)
	}
}

func TestInvalidTracks(t *testing.T) {
	x := NewIndex(nil)
	id := track.NewID()

	if err := x.SetChapterTrack(track.None, id); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack for None content, got %v", err)
	}
	if err := x.SetChapterTrack(id, track.None); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack for None chapter, got %v", err)
	}
	if err := x.SetChapterTrack(id, id); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack for self reference, got %v", err)
	}
	if err := x.ClearChapterTrack(track.None); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack clearing None, got %v", err)
	}
	if _, err := x.ChapterAt(track.None, 1); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack for ChapterAt(None), got %v", err)
	}
	if _, err := x.ChapterText(id, 1); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("expected ErrInvalidTrack for unknown track, got %v", err)
	}
	if n := x.ChapterCount(track.None); n != 0 {
		t.Errorf("ChapterCount(None) = %d, want 0", n)
	}
}

func TestIsChapterTrack(t *testing.T) {
	x := NewIndex(nil)
	video, sound, text, stray := track.NewID(), track.NewID(), track.NewID(), track.NewID()
	all := []track.ID{video, sound, text}

	if x.IsChapterTrack(text, all) {
		t.Fatal("text track is not referenced yet")
	}
	if err := x.SetChapterTrack(video, text); err != nil {
		t.Fatal(err)
	}
	if !x.IsChapterTrack(text, all) {
		t.Error("text track should be a chapter track")
	}
	if x.IsChapterTrack(video, all) {
		t.Error("video track is not a chapter track")
	}
	if x.IsChapterTrack(text, []track.ID{text, sound}) {
		t.Error("only references from tracks in the list count")
	}
	if x.IsChapterTrack(stray, all) {
		t.Error("unknown track should not be a chapter track")
	}
}

func TestRemoveTrackDropsDanglingReferences(t *testing.T) {
	x := NewIndex(nil)
	a, b, c := track.NewID(), track.NewID(), track.NewID()
	_ = x.SetChapterTrack(a, c)
	_ = x.SetChapterTrack(b, c)
	_ = x.SetChapterTrack(c, a)

	x.RemoveTrack(c)
	if len(x.References()) != 0 {
		t.Errorf("expected no references, got %+v", x.References())
	}
}

func TestChapterScenario(t *testing.T) {
	x, store := scenario(t)
	id := store.TrackID()

	if n := x.ChapterCount(id); n != 3 {
		t.Fatalf("ChapterCount = %d, want 3", n)
	}

	ch, err := x.ChapterAt(id, 2)
	if err != nil {
		t.Fatalf("ChapterAt error: %v", err)
	}
	if ch.StartTime != 10 || ch.Title != "Chapter 1" || ch.Index != 2 || ch.EndTime != 25 {
		t.Errorf("ChapterAt(2) = %+v", ch)
	}

	for i := 1; i <= 3; i++ {
		ch, err := x.ChapterAt(id, i)
		if err != nil {
			t.Fatalf("ChapterAt(%d) error: %v", i, err)
		}
		want, _ := store.Sample(i - 1)
		if ch.StartTime != want.StartTime || ch.Title != string(want.Text) {
			t.Errorf("ChapterAt(%d) = %+v, want sample %+v", i, ch, want)
		}
	}

	for _, bad := range []int{0, -1, 4, 100} {
		if _, err := x.ChapterAt(id, bad); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ChapterAt(%d): expected ErrOutOfRange, got %v", bad, err)
		}
		if _, err := x.ChapterText(id, bad); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ChapterText(%d): expected ErrOutOfRange, got %v", bad, err)
		}
	}
}

func TestChapterTextIsCopy(t *testing.T) {
	x, store := scenario(t)
	text, err := x.ChapterText(store.TrackID(), 3)
	if err != nil {
		t.Fatalf("ChapterText error: %v", err)
	}
	if string(text) != "Chapter 2" {
		t.Fatalf("got %q", text)
	}
	text[0] = 'X'
	again, _ := x.ChapterText(store.TrackID(), 3)
	if string(again) != "Chapter 2" {
		t.Errorf("caller buffer aliases the store: %q", again)
	}
}

func TestEmptyChapterTrack(t *testing.T) {
	store := newChapterStore(t)
	x := NewIndex(mapSource{store.TrackID(): store})
	if n := x.ChapterCount(store.TrackID()); n != 0 {
		t.Errorf("ChapterCount = %d, want 0", n)
	}
	if _, err := x.ChapterAt(store.TrackID(), 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	chapters, err := x.Chapters(store.TrackID())
	if err != nil || len(chapters) != 0 {
		t.Errorf("Chapters = %v, %v", chapters, err)
	}
}

func TestChaptersWithGaps(t *testing.T) {
	store := newChapterStore(t,
		textsample.TextSample{StartTime: 0, Duration: 5, Text: []byte("A")},
		textsample.TextSample{StartTime: 100, Duration: 5, Text: []byte("B")},
	)
	x := NewIndex(mapSource{store.TrackID(): store})

	chapters, err := x.Chapters(store.TrackID())
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 || chapters[1].StartTime != 100 || chapters[1].Index != 2 {
		t.Errorf("unexpected chapters %+v", chapters)
	}
	ch, err := x.ChapterAt(store.TrackID(), 2)
	if err != nil || ch.Title != "B" {
		t.Errorf("ChapterAt(2) = %+v, %v", ch, err)
	}
}
