package subtitles

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSRT decodes SRT content into cues. Blocks without a valid
// timestamp line are skipped; index lines are ignored and regenerated on
// write.
func ParseSRT(content string) ([]Cue, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	blocks := splitBlocks(normalized)

	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
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
			return nil, fmt.Errorf("srt cue %d: %w", len(cues)+1, err)
		}
		text := strings.Join(lines[tsLine+1:], "\n")
		cues = append(cues, Cue{Start: start, End: end, Text: strings.TrimRight(text, "\n")})
	}
	return cues, nil
}

// FormatSRT serializes cues with regenerated 1-based indices. Timestamps
// below zero clamp to 00:00:00,000 for display.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, formatSRTTimestamp(cue.Start), formatSRTTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

func splitBlocks(content string) []string {
	raw := strings.Split(strings.TrimSpace(content), "\n\n")
	blocks := make([]string, 0, len(raw))
	for _, block := range raw {
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func parseTimestampLine(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseSRTTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// WebVTT-style cue settings after the end timestamp are dropped.
	endText := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endText) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	end, err := parseSRTTimestamp(endText[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize period to comma (SRT uses a comma before milliseconds,
	// WebVTT a period).
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	var hours, minutes, seconds int
	var errH, errM, errS error
	switch len(hms) {
	case 3:
		hours, errH = strconv.Atoi(hms[0])
		minutes, errM = strconv.Atoi(hms[1])
		seconds, errS = strconv.Atoi(hms[2])
	case 2:
		minutes, errM = strconv.Atoi(hms[0])
		seconds, errS = strconv.Atoi(hms[1])
	default:
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func formatSRTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, ",")
}

func formatTimestamp(seconds float64, msSep string) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, msSep, millis)
}
