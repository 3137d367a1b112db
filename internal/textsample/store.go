// Package textsample holds the ordered text samples of a text track.
//
// Samples are kept sorted by start time and never overlap. Every mutation
// marks the store dirty so callers can decide when to persist, and registered
// observers are told when samples are edited, deleted, or become current.
package textsample

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mgpai22/chaptrack/internal/track"
)

// Store is the ordered sample list of one text track.
type Store struct {
	mu        sync.Mutex
	trackID   track.ID
	timeScale int64
	enabled   bool
	defaults  Format
	samples   []TextSample
	dirty     bool
	current   int

	observers  map[int]SampleObserver
	nextObsKey int
}

// NewStore creates an empty, enabled store for the given track.
func NewStore(id track.ID, timeScale int64, defaults Format) (*Store, error) {
	if id.IsNone() {
		return nil, errors.New("text store requires a track id")
	}
	if timeScale <= 0 {
		return nil, fmt.Errorf("time scale must be positive, got %d", timeScale)
	}
	return &Store{
		trackID:   id,
		timeScale: timeScale,
		enabled:   true,
		defaults:  defaults,
		current:   -1,
		observers: make(map[int]SampleObserver),
	}, nil
}

func (s *Store) TrackID() track.ID {
	return s.trackID
}

func (s *Store) TimeScale() int64 {
	return s.timeScale
}

func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled != enabled {
		s.enabled = enabled
		s.dirty = true
	}
}

// Defaults returns the track-level display format applied to edited samples.
func (s *Store) Defaults() Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults
}

func (s *Store) SetDefaults(f Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = f
	s.dirty = true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Duration is the end time of the last sample, or 0 for an empty store.
func (s *Store) Duration() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1].EndTime()
}

// Sample returns a copy of the sample at index.
func (s *Store) Sample(index int) (TextSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return TextSample{}, err
	}
	return s.samples[index].clone(), nil
}

// Samples returns a copy of every sample in time order.
func (s *Store) Samples() []TextSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TextSample, len(s.samples))
	for i, sample := range s.samples {
		out[i] = sample.clone()
	}
	return out
}

// Append adds a sample after the last one.
func (s *Store) Append(sample TextSample) error {
	if err := validate(sample); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.samples); n > 0 {
		last := s.samples[n-1]
		if sample.StartTime < last.EndTime() {
			return fmt.Errorf(
				"%w: start %d, previous sample ends at %d",
				ErrOrderingViolation,
				sample.StartTime,
				last.EndTime(),
			)
		}
	}

	s.samples = append(s.samples, sample.clone())
	s.dirty = true
	return nil
}

// InsertAt places sample at time t, keeping the store ordered. It returns the
// index the sample landed at.
func (s *Store) InsertAt(t int64, sample TextSample) (int, error) {
	sample.StartTime = t
	if err := validate(sample); err != nil {
		return -1, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].StartTime >= t
	})
	if pos > 0 && s.samples[pos-1].EndTime() > t {
		prev := s.samples[pos-1]
		return -1, fmt.Errorf(
			"%w: [%d,%d) runs into [%d,%d)",
			ErrOverlapViolation,
			prev.StartTime,
			prev.EndTime(),
			t,
			sample.EndTime(),
		)
	}
	if pos < len(s.samples) && s.samples[pos].StartTime < sample.EndTime() {
		next := s.samples[pos]
		return -1, fmt.Errorf(
			"%w: [%d,%d) runs into [%d,%d)",
			ErrOverlapViolation,
			t,
			sample.EndTime(),
			next.StartTime,
			next.EndTime(),
		)
	}

	s.samples = slices.Insert(s.samples, pos, sample.clone())
	if s.current >= pos {
		s.current++
	}
	s.dirty = true
	return pos, nil
}

// Delete removes the sample at index.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	if err := s.checkIndex(index); err != nil {
		s.mu.Unlock()
		return err
	}

	removed := s.samples[index]
	s.samples = slices.Delete(s.samples, index, index+1)
	switch {
	case s.current == index:
		s.current = -1
	case s.current > index:
		s.current--
	}
	s.dirty = true
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, Event{
		Kind:    EventDeleted,
		TrackID: s.trackID,
		Index:   index,
		Sample:  removed,
	})
	return nil
}

// FindSampleContaining returns the index of the sample whose interval
// contains t.
func (s *Store) FindSampleContaining(t int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexContaining(t); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: no sample at time %d", ErrNotFound, t)
}

// ReplaceSampleText swaps the text of the sample at index. The sample keeps
// its start and duration; its display format is reset to the track defaults.
func (s *Store) ReplaceSampleText(index int, text []byte) error {
	if len(text) > MaxTextLen {
		return fmt.Errorf("%w: got %d bytes", ErrTextTooLong, len(text))
	}

	s.mu.Lock()
	if err := s.checkIndex(index); err != nil {
		s.mu.Unlock()
		return err
	}

	old := s.samples[index]
	replaced := TextSample{
		StartTime: old.StartTime,
		Duration:  old.Duration,
		Text:      text,
		Format:    s.defaults,
	}.clone()
	s.samples[index] = replaced
	s.dirty = true
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, Event{
		Kind:    EventEdited,
		TrackID: s.trackID,
		Index:   index,
		Sample:  replaced.clone(),
	})
	return nil
}

// NextSampleTime returns the start time of the first sample that starts
// after t. Pass a negative t to get the first sample.
func (s *Store) NextSampleTime(t int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].StartTime > t
	})
	if i == len(s.samples) {
		return 0, false
	}
	return s.samples[i].StartTime, true
}

// Payload returns the wire encoding of the sample text at index.
func (s *Store) Payload(index int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	return EncodeText(s.samples[index].Text)
}

func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Store) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Observe registers o for store events. Call the returned function to stop.
func (s *Store) Observe(o SampleObserver) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.nextObsKey
	s.nextObsKey++
	s.observers[key] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

// SetCurrentTime moves the playback cursor to t. When a different sample
// becomes current, observers get an EventCurrent. It returns the current
// index, or -1 when no sample covers t.
func (s *Store) SetCurrentTime(t int64) int {
	s.mu.Lock()
	i := s.indexContaining(t)
	if i == s.current {
		s.mu.Unlock()
		return i
	}
	s.current = i
	if i < 0 {
		s.mu.Unlock()
		return i
	}
	sample := s.samples[i].clone()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, Event{
		Kind:    EventCurrent,
		TrackID: s.trackID,
		Index:   i,
		Sample:  sample,
	})
	return i
}

// Current returns the index of the current sample.
func (s *Store) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current >= 0
}

func (s *Store) indexContaining(t int64) int {
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].StartTime > t
	}) - 1
	if i >= 0 && s.samples[i].Contains(t) {
		return i
	}
	return -1
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.samples) {
		return &IndexError{Index: index, Len: len(s.samples)}
	}
	return nil
}

func (s *Store) snapshotObservers() []SampleObserver {
	if len(s.observers) == 0 {
		return nil
	}
	keys := make([]int, 0, len(s.observers))
	for k := range s.observers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]SampleObserver, len(keys))
	for i, k := range keys {
		out[i] = s.observers[k]
	}
	return out
}

func notify(observers []SampleObserver, e Event) {
	for _, o := range observers {
		o.SampleEvent(e)
	}
}

func validate(sample TextSample) error {
	if sample.Duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, sample.Duration)
	}
	if sample.StartTime < 0 {
		return fmt.Errorf(
			"%w: start %d is before the track start",
			ErrOrderingViolation,
			sample.StartTime,
		)
	}
	if len(sample.Text) > MaxTextLen {
		return fmt.Errorf("%w: got %d bytes", ErrTextTooLong, len(sample.Text))
	}
	return nil
}
