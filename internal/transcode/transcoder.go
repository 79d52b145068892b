package transcode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/go-audio/wav"

	"github.com/jim60105/subx-cli-sub001/internal/pcm"
)

// Decoder produces a mono PCM buffer from one media file. Variants exist
// per decode path and are selected from the probed container and codec.
type Decoder interface {
	DecodePCM(ctx context.Context, path string) (*pcm.Buffer, error)
}

// Transcoder resolves a media path to a mono PCM buffer at the source's
// native sample rate. It is stateless and safe for concurrent use across
// independent requests.
type Transcoder struct {
	ffmpegBin  string
	ffprobeBin string
	workDir    string
	log        *slog.Logger
}

// NewTranscoder constructs a Transcoder. Empty binary names fall back to
// "ffmpeg"/"ffprobe" on PATH; an empty workDir uses the system temp dir.
func NewTranscoder(ffmpegBin, ffprobeBin, workDir string, logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transcoder{
		ffmpegBin:  strings.TrimSpace(ffmpegBin),
		ffprobeBin: strings.TrimSpace(ffprobeBin),
		workDir:    strings.TrimSpace(workDir),
		log:        logger,
	}
}

// Probe identifies the container without decoding.
func (t *Transcoder) Probe(path string) (ContainerKind, error) {
	return Probe(path)
}

// DecodeToPCM selects the first supported audio stream and decodes it to a
// mono buffer. Multi-channel sources keep only channel 0; the sample rate
// is the container's reported rate, never resampled.
func (t *Transcoder) DecodeToPCM(ctx context.Context, path string) (*pcm.Buffer, error) {
	kind, err := Probe(path)
	if err != nil {
		return nil, err
	}

	if kind == ContainerWAV {
		if ok, err := wavDirectlyReadable(path); err == nil && ok {
			t.log.Debug("wav pass-through decode", "path", path)
			return wavDecoder{}.DecodePCM(ctx, path)
		}
	}

	probe, err := Inspect(ctx, t.ffprobeBin, path)
	if err != nil {
		return nil, err
	}
	stream, err := probe.FirstSupportedAudioStream()
	if err != nil {
		return nil, fmt.Errorf("select audio stream %q: %w", path, err)
	}
	t.log.Debug("decoding audio stream",
		"path", path,
		"container", kind.String(),
		"codec", stream.CodecName,
		"stream", stream.Index,
		"sample_rate", stream.SampleRateHz(),
		"channels", stream.Channels,
	)

	dec := t.decoderFor(kind, stream)
	buf, err := dec.DecodePCM(ctx, path)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// decoderFor picks the Decoder variant for the probed container and codec.
// Mono 16-bit PCM inside WAV reads directly; everything else goes through
// the general ffmpeg path.
func (t *Transcoder) decoderFor(kind ContainerKind, stream Stream) Decoder {
	if kind == ContainerWAV && strings.EqualFold(stream.CodecName, "pcm_s16le") && stream.Channels == 1 {
		return wavDecoder{}
	}
	return ffmpegDecoder{
		binary:      t.ffmpegBin,
		workDir:     t.workDir,
		streamIndex: stream.Index,
	}
}

// wavDecoder is the pass-through variant: a direct go-audio read with
// first-channel extraction, no external process.
type wavDecoder struct{}

func (wavDecoder) DecodePCM(_ context.Context, path string) (*pcm.Buffer, error) {
	buf, err := pcm.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return buf, nil
}

// ffmpegDecoder is the general variant: ffmpeg decodes the selected stream
// into a temporary 16-bit WAV at the source sample rate with all channels
// preserved, then the WAV reader stride-extracts channel 0. The temp file
// is acquired at the start of the decode and removed on every exit path,
// including cancellation.
type ffmpegDecoder struct {
	binary      string
	workDir     string
	streamIndex int
}

func (d ffmpegDecoder) DecodePCM(ctx context.Context, path string) (*pcm.Buffer, error) {
	binary := d.binary
	if binary == "" {
		binary = "ffmpeg"
	}

	tmp, err := os.CreateTemp(d.workDir, "subx-decode-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create decode scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	// No -ar: the output keeps the container's reported sample rate.
	args := []string{
		"-v", "error", "-hide_banner", "-nostdin", "-y",
		"-i", path,
		"-map", fmt.Sprintf("0:%d", d.streamIndex),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		tmpPath,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("decode %q: %w", path, ctxErr)
		}
		return nil, fmt.Errorf("decode %q: %w: %s", path, ErrDecode, strings.TrimSpace(string(output)))
	}

	buf, err := pcm.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read decoded stream for %q: %w: %v", path, ErrDecode, err)
	}
	return buf, nil
}

// wavDirectlyReadable reports whether the file header describes mono
// 16-bit linear PCM, the only shape the pass-through variant accepts.
func wavDirectlyReadable(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if decoder.Err() != nil {
		return false, decoder.Err()
	}
	return decoder.NumChans == 1 && decoder.BitDepth == 16 && decoder.WavAudioFormat == 1, nil
}
