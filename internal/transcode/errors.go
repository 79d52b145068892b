package transcode

import "errors"

// Sentinel errors describing why a source cannot yield a PCM buffer.
// Callers classify with errors.Is; wrapped messages carry the detail.
var (
	// ErrFormatUnsupported marks containers or codecs outside the
	// supported set.
	ErrFormatUnsupported = errors.New("format unsupported")

	// ErrNoAudioTrack marks containers with no decodable audio stream.
	ErrNoAudioTrack = errors.New("no audio track")

	// ErrDecode marks mid-stream decode failures. Partial buffers are
	// discarded, never returned truncated.
	ErrDecode = errors.New("decode failure")
)
