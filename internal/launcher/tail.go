package launcher

import (
	"io"
	"os"
	"strings"
)

// LogTailLines is how much of the log a timed-out outcome carries.
const LogTailLines = 60

const tailWindowBytes = 64 * 1024

// tailLines returns up to n final lines of the file at path. Best effort: any
// read problem yields nil rather than an error, the tail is diagnostic only.
func tailLines(path string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}
	size := info.Size()
	if size == 0 {
		return nil
	}
	offset := int64(0)
	if size > tailWindowBytes {
		offset = size - tailWindowBytes
	}

	buf := make([]byte, size-offset)
	if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if offset > 0 && len(lines) > 1 {
		// The first line of a mid-file window is almost always cut short.
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
