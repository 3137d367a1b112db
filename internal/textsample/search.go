package textsample

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// SearchOptions describes where and how a search runs. Sample and Offset
// name the scan start: forward scans consider matches at or after Offset,
// backward scans consider matches before Offset.
type SearchOptions struct {
	Sample        int
	Offset        int
	Direction     Direction
	Wrap          bool
	CaseSensitive bool
}

// Match locates found text. Length is measured in the sample's bytes, which
// can differ from the pattern length for case-folded matches.
type Match struct {
	Sample int
	Offset int
	Length int
}

// Search scans sample text for pattern starting at opts.Sample/opts.Offset.
// The first match in scan order wins.
func (s *Store) Search(pattern []byte, opts SearchOptions) (Match, error) {
	if len(pattern) == 0 {
		return Match{}, fmt.Errorf("%w: empty search pattern", ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.samples)
	if n == 0 {
		return Match{}, fmt.Errorf("%w: track has no samples", ErrNotFound)
	}
	if err := s.checkIndex(opts.Sample); err != nil {
		return Match{}, err
	}

	m := newMatcher(pattern, opts.CaseSensitive)
	cur := opts.Sample
	from := clamp(opts.Offset, 0, len(s.samples[cur].Text))

	try := func(i, lo, hi int, forward bool) (Match, bool) {
		off, length, ok := m.scan(s.samples[i].Text, lo, hi, forward)
		if !ok {
			return Match{}, false
		}
		return Match{Sample: i, Offset: off, Length: length}, true
	}
	const all = -1

	if opts.Direction == Backward {
		if hit, ok := try(cur, 0, from, false); ok {
			return hit, nil
		}
		for i := cur - 1; i >= 0; i-- {
			if hit, ok := try(i, 0, all, false); ok {
				return hit, nil
			}
		}
		if opts.Wrap {
			for i := n - 1; i > cur; i-- {
				if hit, ok := try(i, 0, all, false); ok {
					return hit, nil
				}
			}
			if hit, ok := try(cur, from, all, false); ok {
				return hit, nil
			}
		}
	} else {
		if hit, ok := try(cur, from, all, true); ok {
			return hit, nil
		}
		for i := cur + 1; i < n; i++ {
			if hit, ok := try(i, 0, all, true); ok {
				return hit, nil
			}
		}
		if opts.Wrap {
			for i := 0; i < cur; i++ {
				if hit, ok := try(i, 0, all, true); ok {
					return hit, nil
				}
			}
			if hit, ok := try(cur, 0, from, true); ok {
				return hit, nil
			}
		}
	}

	return Match{}, fmt.Errorf("%w: %q", ErrNotFound, pattern)
}

// Finder repeats a search, moving its own cursor past each hit so the next
// call finds the following occurrence.
type Finder struct {
	Options SearchOptions
}

// Next runs the search and advances the cursor on success.
func (f *Finder) Next(s *Store, pattern []byte) (Match, error) {
	hit, err := s.Search(pattern, f.Options)
	if err != nil {
		return Match{}, err
	}
	f.Options.Sample = hit.Sample
	if f.Options.Direction == Backward {
		f.Options.Offset = hit.Offset
	} else {
		f.Options.Offset = hit.Offset + hit.Length
	}
	return hit, nil
}

// Reset moves the cursor back to the start of the given sample.
func (f *Finder) Reset(sample int) {
	f.Options.Sample = sample
	f.Options.Offset = 0
}

type matcher struct {
	pattern []byte
	fold    bool
	caser   cases.Caser
	folded  map[rune]string
}

func newMatcher(pattern []byte, caseSensitive bool) *matcher {
	m := &matcher{pattern: pattern, fold: !caseSensitive}
	if m.fold {
		m.caser = cases.Fold()
		m.folded = make(map[rune]string)
	}
	return m
}

// scan looks for a match starting in [lo, hi) of text; hi < 0 means the end
// of the text. Forward scans return the lowest offset, backward the highest.
func (m *matcher) scan(text []byte, lo, hi int, forward bool) (int, int, bool) {
	if hi < 0 || hi > len(text) {
		hi = len(text)
	}
	if lo < 0 {
		lo = 0
	}
	if forward {
		for i := lo; i < hi; i++ {
			if n, ok := m.at(text, i); ok {
				return i, n, true
			}
		}
		return 0, 0, false
	}
	for i := hi - 1; i >= lo; i-- {
		if n, ok := m.at(text, i); ok {
			return i, n, true
		}
	}
	return 0, 0, false
}

// at reports whether the pattern matches text at offset i and how many text
// bytes the match covers.
func (m *matcher) at(text []byte, i int) (int, bool) {
	if !m.fold {
		if bytes.HasPrefix(text[i:], m.pattern) {
			return len(m.pattern), true
		}
		return 0, false
	}

	if !utf8.RuneStart(text[i]) {
		return 0, false
	}
	j, k := i, 0
	for k < len(m.pattern) {
		if j >= len(text) {
			return 0, false
		}
		tr, tsize := utf8.DecodeRune(text[j:])
		pr, psize := utf8.DecodeRune(m.pattern[k:])
		switch {
		case tr == utf8.RuneError || pr == utf8.RuneError:
			// invalid UTF-8 only matches byte for byte
			if tsize != psize || !bytes.Equal(text[j:j+tsize], m.pattern[k:k+psize]) {
				return 0, false
			}
		case tr != pr && m.foldRune(tr) != m.foldRune(pr):
			return 0, false
		}
		j += tsize
		k += psize
	}
	return j - i, true
}

func (m *matcher) foldRune(r rune) string {
	if f, ok := m.folded[r]; ok {
		return f
	}
	f := m.caser.String(string(r))
	m.folded[r] = f
	return f
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
