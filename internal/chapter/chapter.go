// Package chapter records which text track serves as the chapter track of a
// content track and walks chapter tracks as ordered chapter lists.
//
// References live in a side table keyed by content track. A reference is an
// association only: neither track owns the other, and whoever deletes a track
// must call Index.RemoveTrack so no reference dangles.
package chapter

import (
	"errors"
	"fmt"

	"github.com/mgpai22/chaptrack/internal/textsample"
	"github.com/mgpai22/chaptrack/internal/track"
)

var (
	ErrInvalidTrack = errors.New("invalid track")
	ErrOutOfRange   = errors.New("chapter index out of range")
)

// Chapter is one entry of a chapter track. Times are in the chapter
// track's time scale.
type Chapter struct {
	Index     int    `json:"index"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Title     string `json:"title"`
}

// StoreSource resolves a track to its text samples.
type StoreSource interface {
	Store(id track.ID) (*textsample.Store, bool)
}

// Reference is one content -> chapter association.
type Reference struct {
	Content track.ID `json:"content"`
	Chapter track.ID `json:"chapter"`
}

func outOfRange(index, count int) error {
	return fmt.Errorf("%w: chapter %d of %d", ErrOutOfRange, index, count)
}
