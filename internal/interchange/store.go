package interchange

import (
	"fmt"

	"github.com/mgpai22/chaptrack/internal/chapter"
	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/timebase"
)

// Fill appends the cues of doc to store, converting times to the store's
// time scale. Gaps between cues are kept; a cue that starts before the
// previous one ends fails with textsample.ErrOrderingViolation.
func Fill(store *textsample.Store, doc *Document) error {
	defaults := store.Defaults()
	for i, cue := range doc.Cues {
		start, err := timebase.FromDuration(cue.Start, store.TimeScale())
		if err != nil {
			return fmt.Errorf("cue %d: %w", i+1, err)
		}
		end, err := timebase.FromDuration(cue.End, store.TimeScale())
		if err != nil {
			return fmt.Errorf("cue %d: %w", i+1, err)
		}
		err = store.Append(textsample.TextSample{
			StartTime: start,
			Duration:  end - start,
			Text:      []byte(cue.Text),
			Format:    defaults,
		})
		if err != nil {
			return fmt.Errorf("cue %d: %w", i+1, err)
		}
	}
	return nil
}

// FromStore builds a document from the samples of a text store.
func FromStore(store *textsample.Store, format Format) (*Document, error) {
	samples := store.Samples()
	doc := &Document{Cues: make([]Cue, 0, len(samples)), Format: format}
	for i, s := range samples {
		start, err := timebase.ToDuration(s.StartTime, store.TimeScale())
		if err != nil {
			return nil, err
		}
		end, err := timebase.ToDuration(s.EndTime(), store.TimeScale())
		if err != nil {
			return nil, err
		}
		doc.Cues = append(doc.Cues, Cue{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  string(s.Text),
		})
	}
	return doc, nil
}

// FromChapters builds a document from a chapter list whose times are in
// timeScale units.
func FromChapters(chapters []chapter.Chapter, timeScale int64, format Format) (*Document, error) {
	doc := &Document{Cues: make([]Cue, 0, len(chapters)), Format: format}
	for _, c := range chapters {
		start, err := timebase.ToDuration(c.StartTime, timeScale)
		if err != nil {
			return nil, err
		}
		end, err := timebase.ToDuration(c.EndTime, timeScale)
		if err != nil {
			return nil, err
		}
		doc.Cues = append(doc.Cues, Cue{
			Index: c.Index,
			Start: start,
			End:   end,
			Text:  c.Title,
		})
	}
	return doc, nil
}
