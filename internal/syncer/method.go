package syncer

type methodKind int

const (
	methodVAD methodKind = iota
	methodManual
)

// Method is the closed two-variant choice between speech-based detection
// and a caller-supplied offset. Construct it with VADMethod or
// ManualMethod; the zero value is the VAD variant.
type Method struct {
	kind   methodKind
	offset float64
}

// VADMethod selects the full detection pipeline.
func VADMethod() Method {
	return Method{kind: methodVAD}
}

// ManualMethod selects a direct application of offsetSeconds, bypassing
// transcoding, detection and calculation. The offset is still subject to
// the bounds clamp.
func ManualMethod(offsetSeconds float64) Method {
	return Method{kind: methodManual, offset: offsetSeconds}
}

// IsManual reports whether the method bypasses the detection pipeline.
func (m Method) IsManual() bool {
	return m.kind == methodManual
}

// ManualOffset returns the caller-supplied offset for the manual variant.
func (m Method) ManualOffset() float64 {
	return m.offset
}

// String names the method for logs and the journal.
func (m Method) String() string {
	if m.kind == methodManual {
		return "manual"
	}
	return "vad"
}
