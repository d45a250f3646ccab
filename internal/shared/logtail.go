package shared

import (
	"io"
	"os"
	"strings"
)

// tailReadWindow bounds how much of a log file TailLines reads from the end.
const tailReadWindow = 256 * 1024

// TailLines returns the last n lines of the file at path. Reads at most
// tailReadWindow bytes from the end, so a huge log cannot blow up memory.
func TailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	offset := st.Size() - tailReadWindow
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	// Drop the partial first line when we started mid-file.
	if offset > 0 && len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
