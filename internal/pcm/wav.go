package pcm

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadFile decodes a RIFF/WAVE file into a mono buffer at the file's
// native sample rate. Multi-channel sources keep only the first channel;
// samples are never averaged across channels.
func ReadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("decode wav %q: not a valid RIFF/WAVE stream", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode wav %q: missing format header", path)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	mono := FirstChannel(buf.Data, channels)

	return &Buffer{
		Samples:    ToInt16(mono, buf.SourceBitDepth),
		SampleRate: uint32(buf.Format.SampleRate),
	}, nil
}

// FirstChannel stride-extracts channel 0 from interleaved sample data.
// For a stereo [L, R, L, R, ...] layout the result is exactly the L
// stream.
func FirstChannel(data []int, channels int) []int {
	if channels <= 1 {
		out := make([]int, len(data))
		copy(out, data)
		return out
	}
	out := make([]int, 0, (len(data)+channels-1)/channels)
	for i := 0; i < len(data); i += channels {
		out = append(out, data[i])
	}
	return out
}

// ToInt16 rescales samples from their source bit depth into the int16
// range. 16-bit sources pass through value for value so the pass-through
// and general decode paths stay bit-identical.
func ToInt16(data []int, sourceBitDepth int) []int16 {
	shift := uint(0)
	switch {
	case sourceBitDepth > 16:
		shift = uint(sourceBitDepth - 16)
	case sourceBitDepth > 0 && sourceBitDepth < 16:
		// Widen 8-bit (and other narrow) sources up to 16-bit range.
		out := make([]int16, len(data))
		up := uint(16 - sourceBitDepth)
		for i, v := range data {
			out[i] = clampInt16(v << up)
		}
		return out
	}
	out := make([]int16, len(data))
	for i, v := range data {
		out[i] = clampInt16(v >> shift)
	}
	return out
}

// WriteFile encodes a mono buffer as a 16-bit RIFF/WAVE file.
func WriteFile(path string, buf *Buffer) error {
	if buf == nil || buf.SampleRate == 0 {
		return fmt.Errorf("write wav %q: empty buffer", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, int(buf.SampleRate), 16, 1, 1)
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(s)
	}
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(buf.SampleRate)},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(intBuf); err != nil {
		return fmt.Errorf("write wav %q: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav %q: %w", path, err)
	}
	return nil
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
