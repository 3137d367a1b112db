package textsample

import (
	"errors"
	"fmt"
)

var (
	ErrOrderingViolation = errors.New("sample starts before the end of the last sample")
	ErrOverlapViolation  = errors.New("sample overlaps an existing sample")
	ErrIndexOutOfRange   = errors.New("sample index out of range")
	ErrNotFound          = errors.New("not found")
	ErrInvalidDuration   = errors.New("sample duration must be positive")
	ErrTextTooLong       = errors.New("sample text exceeds 65535 bytes")
	ErrShortPayload      = errors.New("sample payload is truncated")
)

// IndexError reports an index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("index %d out of range (track has no samples)", e.Index)
	}
	return fmt.Sprintf("index %d out of range (0-%d)", e.Index, e.Len-1)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
