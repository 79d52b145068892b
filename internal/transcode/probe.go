package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ContainerKind identifies a supported media container family.
type ContainerKind int

const (
	ContainerUnknown ContainerKind = iota
	ContainerWAV
	ContainerMP4
	ContainerMatroska
	ContainerOgg
)

// String returns the lowercase container name used in logs and errors.
func (k ContainerKind) String() string {
	switch k {
	case ContainerWAV:
		return "wav"
	case ContainerMP4:
		return "mp4"
	case ContainerMatroska:
		return "matroska"
	case ContainerOgg:
		return "ogg"
	default:
		return "unknown"
	}
}

var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// Probe inspects a file's leading bytes and identifies its container
// without decoding. Matroska covers WebM (same EBML framing); MP4 covers
// every ISO-BMFF brand. Files outside the supported set fail with
// ErrFormatUnsupported.
func Probe(path string) (ContainerKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return ContainerUnknown, fmt.Errorf("probe %q: %w", path, err)
	}
	defer f.Close()

	// Short and empty files are not read errors; they fall through to the
	// sniff and classify as unsupported.
	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ContainerUnknown, fmt.Errorf("probe %q: %w", path, err)
	}
	header = header[:n]

	kind := sniffHeader(header)
	if kind == ContainerUnknown {
		return ContainerUnknown, fmt.Errorf("probe %q: %w", path, ErrFormatUnsupported)
	}
	return kind, nil
}

func sniffHeader(header []byte) ContainerKind {
	switch {
	case len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE")):
		return ContainerWAV
	case len(header) >= 12 && bytes.Equal(header[4:8], []byte("ftyp")):
		return ContainerMP4
	case len(header) >= 4 && bytes.Equal(header[0:4], ebmlMagic):
		return ContainerMatroska
	case len(header) >= 4 && bytes.Equal(header[0:4], []byte("OggS")):
		return ContainerOgg
	default:
		return ContainerUnknown
	}
}
