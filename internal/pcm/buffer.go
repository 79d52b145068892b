package pcm

// Buffer is a single-channel run of signed 16-bit samples at the source's
// native sample rate. A buffer belongs to exactly one synchronization
// request and moves from stage to stage; it is never shared or mutated
// after construction.
type Buffer struct {
	Samples    []int16
	SampleRate uint32
}

// Len returns the total sample count.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}
