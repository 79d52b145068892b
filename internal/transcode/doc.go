// Package transcode turns arbitrary audio/video containers into mono PCM
// buffers at their native sample rate. Container identification is done by
// header sniffing, stream and codec selection through an ffprobe client,
// and the general decode path materializes a temporary WAV through ffmpeg
// that is removed on every exit path. Plain mono 16-bit WAV input
// short-circuits to a direct read.
package transcode
