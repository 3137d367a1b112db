package media

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mgpai22/chaptrack/internal/chapter"
)

var metadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	";", `\;`,
	"#", `\#`,
	"\n", "\\\n",
)

// WriteFFMetadata writes chapters in ffmpeg's FFMETADATA1 format. Times
// are in timeScale units and written with a matching TIMEBASE.
func WriteFFMetadata(w io.Writer, chapters []chapter.Chapter, timeScale int64) error {
	if timeScale <= 0 {
		return fmt.Errorf("time scale must be positive, got %d", timeScale)
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(";FFMETADATA1\n")
	for _, c := range chapters {
		if c.EndTime <= c.StartTime {
			return fmt.Errorf("chapter %d ends before it starts", c.Index)
		}
		fmt.Fprintf(bw, "\n[CHAPTER]\nTIMEBASE=1/%d\nSTART=%d\nEND=%d\ntitle=%s\n",
			timeScale, c.StartTime, c.EndTime, metadataEscaper.Replace(c.Title))
	}
	return bw.Flush()
}
