package track

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque track handle. Only equality is meaningful; the zero ID is
// "no track".
type ID struct {
	u uuid.UUID
}

// None is the zero track ID.
var None ID

// NewID returns a fresh track handle.
func NewID() ID {
	return ID{u: uuid.New()}
}

// ParseID parses the textual form produced by ID.String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return None, fmt.Errorf("invalid track id %q: %w", s, err)
	}
	return ID{u: u}, nil
}

func (id ID) IsNone() bool {
	return id == None
}

func (id ID) String() string {
	if id.IsNone() {
		return "none"
	}
	return id.u.String()
}

func (id ID) MarshalText() ([]byte, error) {
	if id.IsNone() {
		return []byte{}, nil
	}
	return id.u.MarshalText()
}

func (id *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = None
		return nil
	}
	return id.u.UnmarshalText(b)
}

// represents the kind of media a track holds
type Kind string

const (
	KindVideo Kind = "video"
	KindSound Kind = "sound"
	KindText  Kind = "text"
)

const (
	// tracks with this name carry clickable links in their samples
	HREFTrackName    = "HREFTrack"
	NonHREFTrackName = ""
)

// Track holds the metadata of one timeline in a movie.
type Track struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Enabled bool   `json:"enabled"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`

	// units per second of the track's media
	TimeScale int64 `json:"time_scale"`

	// duration of one frame in movie time units (content tracks only)
	FrameDuration int64 `json:"frame_duration,omitempty"`
}

// IsHREF reports whether the track is named as an HREF track.
func (t *Track) IsHREF() bool {
	return t.Name == HREFTrackName
}

// SetHREF names the track so it is, or is not, treated as an HREF track.
func (t *Track) SetHREF(href bool) {
	if href {
		t.Name = HREFTrackName
	} else {
		t.Name = NonHREFTrackName
	}
}
