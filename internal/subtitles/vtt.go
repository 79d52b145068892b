package subtitles

import (
	"fmt"
	"strings"
)

// ParseVTT decodes WebVTT content into cues. NOTE/STYLE/REGION blocks and
// cue identifiers are dropped; only timing and payload survive.
func ParseVTT(content string) ([]Cue, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	trimmed := strings.TrimPrefix(normalized, "\uFEFF")
	if !strings.HasPrefix(trimmed, "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}

	blocks := splitBlocks(trimmed)
	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
		head := strings.TrimSpace(strings.SplitN(block, "\n", 2)[0])
		if strings.HasPrefix(head, "WEBVTT") || strings.HasPrefix(head, "NOTE") ||
			strings.HasPrefix(head, "STYLE") || strings.HasPrefix(head, "REGION") {
			continue
		}
		lines := strings.Split(block, "\n")
		tsLine := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				tsLine = i
				break
			}
		}
		if tsLine < 0 {
			continue
		}
		start, end, err := parseTimestampLine(lines[tsLine])
		if err != nil {
			return nil, fmt.Errorf("vtt cue %d: %w", len(cues)+1, err)
		}
		text := strings.Join(lines[tsLine+1:], "\n")
		cues = append(cues, Cue{Start: start, End: end, Text: strings.TrimRight(text, "\n")})
	}
	return cues, nil
}

// FormatVTT serializes cues as a WebVTT document.
func FormatVTT(cues []Cue) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for _, cue := range cues {
		fmt.Fprintf(&b, "\n%s --> %s\n%s\n", formatVTTTimestamp(cue.Start), formatVTTTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

func formatVTTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, ".")
}
