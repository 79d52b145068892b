// Package pcm holds the mono sample buffer exchanged between pipeline
// stages and the RIFF/WAVE read and write helpers built on go-audio.
package pcm
