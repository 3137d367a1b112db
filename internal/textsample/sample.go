package textsample

import "bytes"

// horizontal placement of text inside its box
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
)

func (j Justification) String() string {
	switch j {
	case JustifyLeft:
		return "left"
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	default:
		return "unknown"
	}
}

// whether text is clipped to its bounding box
type ClipMode int

const (
	ClipToBox ClipMode = iota
	DontClip
)

func (c ClipMode) String() string {
	if c == DontClip {
		return "dont-clip"
	}
	return "clip-to-box"
}

type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// Format is the display metadata of a sample.
type Format struct {
	Justification Justification `json:"justification"`
	BoundingBox   Rect          `json:"bounding_box"`
	ClipMode      ClipMode      `json:"clip_mode"`
}

// TextSample is one timed unit of text. Times are in the owning track's
// time scale.
type TextSample struct {
	StartTime int64  `json:"start_time"`
	Duration  int64  `json:"duration"`
	Text      []byte `json:"text"`
	Format
}

// EndTime is the first time unit after the sample.
func (s TextSample) EndTime() int64 {
	return s.StartTime + s.Duration
}

// Contains reports whether t falls in [StartTime, EndTime).
func (s TextSample) Contains(t int64) bool {
	return t >= s.StartTime && t < s.EndTime()
}

func (s TextSample) clone() TextSample {
	s.Text = bytes.Clone(s.Text)
	if s.Text == nil {
		s.Text = []byte{}
	}
	return s
}
