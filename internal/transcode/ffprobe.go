package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult represents the parsed output from an ffprobe inspection.
type ProbeResult struct {
	Streams []Stream    `json:"streams"`
	Format  FormatProbe `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Profile    string `json:"profile"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// FormatProbe captures container-level metadata extracted by ffprobe.
type FormatProbe struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func Inspect(ctx context.Context, binary string, path string) (ProbeResult, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// SampleRateHz returns the stream sample rate in Hz, or 0 when absent.
func (s Stream) SampleRateHz() uint32 {
	rate, err := strconv.Atoi(strings.TrimSpace(s.SampleRate))
	if err != nil || rate < 0 {
		return 0
	}
	return uint32(rate)
}

// FirstSupportedAudioStream selects the first audio stream whose codec the
// pipeline can decode. A container without any audio stream yields
// ErrNoAudioTrack; audio present in unsupported codecs only yields
// ErrFormatUnsupported.
func (r ProbeResult) FirstSupportedAudioStream() (Stream, error) {
	sawAudio := false
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		sawAudio = true
		if codecSupported(stream) {
			return stream, nil
		}
	}
	if !sawAudio {
		return Stream{}, ErrNoAudioTrack
	}
	return Stream{}, fmt.Errorf("audio codec not in supported set: %w", ErrFormatUnsupported)
}

// codecSupported reports whether the pipeline decodes the stream's codec:
// the PCM family, FLAC, ALAC, AAC-LC, MP3, Opus, Vorbis and WavPack.
func codecSupported(s Stream) bool {
	codec := strings.ToLower(strings.TrimSpace(s.CodecName))
	switch {
	case strings.HasPrefix(codec, "pcm_"):
		return true
	case codec == "flac", codec == "alac", codec == "mp3", codec == "opus", codec == "vorbis", codec == "wavpack":
		return true
	case codec == "aac":
		// Only the low-complexity profile; HE/HEv2 stay unsupported.
		profile := strings.ToUpper(strings.TrimSpace(s.Profile))
		return profile == "" || profile == "LC"
	default:
		return false
	}
}
