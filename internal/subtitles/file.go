package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a subtitle on-disk representation.
type Format int

const (
	FormatUnknown Format = iota
	FormatSRTFile
	FormatVTTFile
)

// String returns the conventional file extension without the dot.
func (f Format) String() string {
	switch f {
	case FormatSRTFile:
		return "srt"
	case FormatVTTFile:
		return "vtt"
	default:
		return "unknown"
	}
}

// DetectFormat maps a file path to its subtitle format by extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRTFile
	case ".vtt":
		return FormatVTTFile
	default:
		return FormatUnknown
	}
}

// ReadFile loads and parses a subtitle file, normalizing legacy character
// encodings to UTF-8 first.
func ReadFile(path string) ([]Cue, Format, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, FormatUnknown, fmt.Errorf("unsupported subtitle extension %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format, fmt.Errorf("read subtitle: %w", err)
	}
	content, err := DecodeText(data)
	if err != nil {
		return nil, format, fmt.Errorf("decode subtitle %q: %w", path, err)
	}

	var cues []Cue
	switch format {
	case FormatSRTFile:
		cues, err = ParseSRT(content)
	case FormatVTTFile:
		cues, err = ParseVTT(content)
	}
	if err != nil {
		return nil, format, fmt.Errorf("parse subtitle %q: %w", path, err)
	}
	return cues, format, nil
}

// WriteFile serializes cues in the given format as UTF-8.
func WriteFile(path string, cues []Cue, format Format) error {
	var content string
	switch format {
	case FormatSRTFile:
		content = FormatSRT(cues)
	case FormatVTTFile:
		content = FormatVTT(cues)
	default:
		return fmt.Errorf("unsupported subtitle format %v", format)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	return nil
}
