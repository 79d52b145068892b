package subtitles

// Cue is one subtitle entry. Start and End are seconds from stream start.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Shift returns a new cue sequence with every start and end moved by
// offsetSeconds. It is a pure translation: ordering, relative spacing and
// cue durations are preserved exactly, and the input slice is untouched.
// Negative timestamps are allowed here; serialization clamps them for
// display.
func Shift(cues []Cue, offsetSeconds float64) []Cue {
	shifted := make([]Cue, len(cues))
	for i, cue := range cues {
		shifted[i] = Cue{
			Start: cue.Start + offsetSeconds,
			End:   cue.End + offsetSeconds,
			Text:  cue.Text,
		}
	}
	return shifted
}

// FirstStart returns the start time of the first cue, or false when the
// sequence is empty.
func FirstStart(cues []Cue) (float64, bool) {
	if len(cues) == 0 {
		return 0, false
	}
	return cues[0].Start, true
}
