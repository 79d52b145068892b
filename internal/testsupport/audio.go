// Package testsupport synthesizes audio fixtures for tests.
package testsupport

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jim60105/subx-cli-sub001/internal/pcm"
)

// WriteWAV writes interleaved 16-bit samples as a RIFF/WAVE file.
func WriteWAV(t *testing.T, path string, sampleRate, channels int, samples []int16) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav fixture: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("write wav fixture: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("finalize wav fixture: %v", err)
	}
}

// Silence returns seconds of zero samples.
func Silence(sampleRate uint32, seconds float64) []int16 {
	return make([]int16, int(float64(sampleRate)*seconds))
}

// Tone returns seconds of a sine at the given frequency and amplitude
// (amplitude in [0,1] of full scale).
func Tone(sampleRate uint32, seconds, freq, amplitude float64) []int16 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]int16, n)
	for i := range samples {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		samples[i] = int16(v * 32767)
	}
	return samples
}

// SpeechBuffer returns a mono buffer of total seconds of silence with a
// loud tone occupying [start, end) seconds, mimicking one burst of
// dialogue.
func SpeechBuffer(sampleRate uint32, total, start, end float64) *pcm.Buffer {
	samples := Silence(sampleRate, total)
	burst := Tone(sampleRate, end-start, 440, 0.5)
	offset := int(float64(sampleRate) * start)
	for i, s := range burst {
		if offset+i >= len(samples) {
			break
		}
		samples[offset+i] = s
	}
	return &pcm.Buffer{Samples: samples, SampleRate: sampleRate}
}
