// Package subtitles parses and serializes cue lists in SRT and WebVTT
// form and applies uniform time shifts to them. The sync core treats cues
// as an opaque ordered sequence; this package is the collaborator that
// owns their on-disk representation.
package subtitles
