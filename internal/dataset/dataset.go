package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slam-feed-go/internal/types"
)

// Load parses a timestamps index into an ordered list of stereo pair
// entries. Each non-comment, non-blank line carries a timestamp in seconds
// and the left image filename; the right filename is derived by replacing
// the first occurrence of "left" in the filename with "right". Filenames
// without "left" are reused unchanged against the right directory.
func Load(leftDir, rightDir, timesPath string) ([]types.IndexEntry, error) {
	f, err := os.Open(timesPath)
	if err != nil {
		return nil, fmt.Errorf("open timestamps file: %w", err)
	}
	defer f.Close()

	entries := make([]types.IndexEntry, 0, 5000)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: expected \"<timestamp> <filename>\", got %q", timesPath, lineNo, line)
		}
		timestamp, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad timestamp %q: %w", timesPath, lineNo, fields[0], err)
		}
		name := fields[1]
		entries = append(entries, types.IndexEntry{
			Timestamp: timestamp,
			LeftPath:  filepath.Join(leftDir, name),
			RightPath: filepath.Join(rightDir, RightName(name)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read timestamps file: %w", err)
	}
	return entries, nil
}

// RightName derives the right-camera filename from the left one. Only the
// first occurrence of "left" is substituted.
func RightName(leftName string) string {
	return strings.Replace(leftName, "left", "right", 1)
}

// Verify stats every referenced image before playback starts, so a
// directory content mismatch fails before the tracker is ever invoked.
func Verify(entries []types.IndexEntry) error {
	leftFound, rightFound := 0, 0
	var missing []string
	for _, e := range entries {
		if fileExists(e.LeftPath) {
			leftFound++
		} else {
			missing = append(missing, e.LeftPath)
		}
		if fileExists(e.RightPath) {
			rightFound++
		} else {
			missing = append(missing, e.RightPath)
		}
	}
	if leftFound != rightFound {
		return fmt.Errorf("different number of left and right images (%d left, %d right)", leftFound, rightFound)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d referenced images missing, first: %s", len(missing), missing[0])
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
