package interchange

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimingRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})`,
	)
	vttTimingRegex = regexp.MustCompile(
		`(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})`,
	)
	assTagRegex = regexp.MustCompile(`\{[^}]*\}`)
)

// Open parses a subtitle file, picking the format from its extension.
func Open(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", format, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Read(file, format)
}

// Read parses a subtitle document of the given format.
func Read(r io.Reader, format Format) (*Document, error) {
	var (
		cues []Cue
		err  error
	)
	switch format {
	case FormatSRT:
		cues, err = readCues(r, srtTimingRegex, false)
	case FormatVTT:
		cues, err = readCues(r, vttTimingRegex, true)
	case FormatASS:
		cues, err = readASS(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return &Document{Cues: cues, Format: format}, nil
}

// readCues handles the block layout shared by SRT and VTT: an optional
// identifier line, a timing line, then text up to a blank line.
func readCues(r io.Reader, timing *regexp.Regexp, vtt bool) ([]Cue, error) {
	var (
		cues    []Cue
		current *Cue
		lines   []string
	)
	flush := func() {
		if current != nil && len(lines) > 0 {
			current.Text = strings.Join(lines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		lines = nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	skipBlock := false
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			skipBlock = false
			flush()
			continue
		}
		if skipBlock {
			continue
		}
		if vtt && current == nil {
			if lineNum == 1 && strings.HasPrefix(trimmed, "WEBVTT") {
				skipBlock = true
				continue
			}
			if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") ||
				strings.HasPrefix(trimmed, "REGION") {
				skipBlock = true
				continue
			}
		}

		if m := timing.FindStringSubmatch(line); m != nil && len(lines) == 0 {
			start, err := parseTimestamp(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseTimestamp(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Cue{Index: len(cues) + 1, Start: start, End: end}
			continue
		}

		if current == nil {
			// cue identifier or stray text before a timing line
			continue
		}
		lines = append(lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading subtitle file: %w", err)
	}
	return cues, nil
}

func parseTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	h := 0
	if hours != "" {
		var err error
		if h, err = strconv.Atoi(hours); err != nil {
			return 0, err
		}
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}
	if m > 59 || s > 59 {
		return 0, fmt.Errorf("timestamp field out of range: %s:%s", minutes, seconds)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// readASS reads the Dialogue lines of the [Events] section. Override tags
// are dropped since text tracks carry plain text.
func readASS(r io.Reader) ([]Cue, error) {
	var (
		cues     []Cue
		columns  []string
		inEvents bool
	)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[events]")
			continue
		}
		if !inEvents {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Format:"):
			columns = strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
			for i, c := range columns {
				columns[i] = strings.ToLower(strings.TrimSpace(c))
			}
		case strings.HasPrefix(trimmed, "Dialogue:"):
			if columns == nil {
				return nil, fmt.Errorf("Dialogue before Format line at line %d", lineNum)
			}
			cue, err := parseDialogue(strings.TrimPrefix(trimmed, "Dialogue:"), columns)
			if err != nil {
				return nil, fmt.Errorf("failed to parse Dialogue at line %d: %w", lineNum, err)
			}
			cue.Index = len(cues) + 1
			cues = append(cues, cue)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}
	if columns == nil {
		return nil, fmt.Errorf("ASS file missing Format line in [Events] section")
	}
	return cues, nil
}

func parseDialogue(content string, columns []string) (Cue, error) {
	// the text column is last and may itself contain commas
	fields := strings.SplitN(strings.TrimSpace(content), ",", len(columns))
	if len(fields) < len(columns) {
		return Cue{}, fmt.Errorf("expected %d fields, got %d", len(columns), len(fields))
	}

	var (
		cue                Cue
		haveStart, haveEnd bool
	)
	for i, col := range columns {
		var err error
		switch col {
		case "start":
			cue.Start, err = parseASSTimestamp(fields[i])
			haveStart = true
		case "end":
			cue.End, err = parseASSTimestamp(fields[i])
			haveEnd = true
		case "text":
			text := assTagRegex.ReplaceAllString(fields[i], "")
			text = strings.ReplaceAll(text, `\N`, "\n")
			cue.Text = strings.ReplaceAll(text, `\n`, "\n")
		}
		if err != nil {
			return Cue{}, err
		}
	}
	if !haveStart || !haveEnd {
		return Cue{}, fmt.Errorf("format has no Start/End columns")
	}
	return cue, nil
}

// parses H:MM:SS.CC
func parseASSTimestamp(ts string) (time.Duration, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid ASS timestamp %q", ts)
	}
	secs := strings.Split(parts[2], ".")
	if len(secs) != 2 {
		return 0, fmt.Errorf("invalid ASS timestamp %q", ts)
	}
	var n [4]int
	for i, s := range []string{parts[0], parts[1], secs[0], secs[1]} {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid ASS timestamp %q: %w", ts, err)
		}
		n[i] = v
	}
	return time.Duration(n[0])*time.Hour +
		time.Duration(n[1])*time.Minute +
		time.Duration(n[2])*time.Second +
		time.Duration(n[3])*10*time.Millisecond, nil
}
