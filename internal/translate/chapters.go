package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/chaptrack/internal/textsample"
)

// Titles builds translation items from the samples of a chapter track.
func Titles(store *textsample.Store) []Item {
	samples := store.Samples()
	items := make([]Item, len(samples))
	for i, s := range samples {
		items[i] = Item{Index: i, Text: string(s.Text)}
	}
	return items
}

// Apply writes translated titles back into the chapter track. Timing is
// kept; each edited sample takes the track's default format. Titles longer
// than a pascal string are truncated.
func Apply(store *textsample.Store, results []Result) error {
	for _, r := range results {
		if err := store.ReplaceSampleText(r.Index, textsample.PascalText(r.Text)); err != nil {
			return fmt.Errorf("chapter %d: %w", r.Index+1, err)
		}
	}
	return nil
}

// TranslateChapters translates every title of a chapter track in place.
func TranslateChapters(ctx context.Context, tr Translator, store *textsample.Store) error {
	items := Titles(store)
	if len(items) == 0 {
		return nil
	}
	results, err := tr.Translate(ctx, items)
	if err != nil {
		return err
	}
	if err := checkResults(results, items); err != nil {
		return err
	}
	return Apply(store, results)
}
