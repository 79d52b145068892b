package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pair couples one media file with the subtitle that shares its stem.
type Pair struct {
	MediaPath    string
	SubtitlePath string
}

var mediaExtensions = map[string]bool{
	".wav":  true,
	".mp4":  true,
	".m4a":  true,
	".m4v":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".ogg":  true,
	".oga":  true,
	".ogv":  true,
}

var subtitleExtensions = []string{".srt", ".vtt"}

// DiscoverPairs scans a directory for media files and pairs each with a
// subtitle sharing the same stem, preferring .srt over .vtt. Media files
// without a matching subtitle are skipped. Results sort by media path so
// batch ordering is deterministic.
func DiscoverPairs(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", dir, err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !mediaExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		for _, subExt := range subtitleExtensions {
			candidate := filepath.Join(dir, stem+subExt)
			if _, err := os.Stat(candidate); err == nil {
				pairs = append(pairs, Pair{
					MediaPath:    filepath.Join(dir, name),
					SubtitlePath: candidate,
				})
				break
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].MediaPath < pairs[j].MediaPath })
	return pairs, nil
}
