// Package melo compiles melo notation into a time-ordered performance
// timeline and renders it to MIDI files, audio samples or live playback.
package melo

import (
	"os"
	"runtime"

	"github.com/remeh/sizedwaitgroup"

	"github.com/Mistodon/melo/internal/notation"
	"github.com/Mistodon/melo/internal/sequence"
)

// Re-exported so callers can match compile failures without importing the
// internal packages.
type (
	SyntaxError           = notation.SyntaxError
	DuplicateVoiceError   = sequence.DuplicateVoiceError
	UnknownVoiceError     = sequence.UnknownVoiceError
	InvalidAttributeError = sequence.InvalidAttributeError
	DanglingSustainError  = sequence.DanglingSustainError
)

type Timeline = sequence.Timeline

// Compile parses melo source text and produces its timeline. Play blocks
// render concurrently; the first error in source order wins, and the merged
// event stream is identical across runs for the same input.
func Compile(text string) (*Timeline, error) {
	doc, err := notation.Parse(text)
	if err != nil {
		return nil, err
	}
	reg, err := sequence.BuildRegistry(doc.Voices)
	if err != nil {
		return nil, err
	}

	tracks := make([][]sequence.Event, len(doc.Plays))
	errs := make([]error, len(doc.Plays))
	swg := sizedwaitgroup.New(runtime.NumCPU())
	for i := range doc.Plays {
		swg.Add()
		go func(i int) {
			defer swg.Done()
			voice, err := reg.Lookup(doc.Plays[i])
			if err != nil {
				errs[i] = err
				return
			}
			tracks[i], errs[i] = sequence.RenderTrack(voice, doc.Plays[i])
		}(i)
	}
	swg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	tempo, beats := doc.Tempo, doc.Beats
	if tempo == 0 {
		tempo = sequence.DefaultTempo
	}
	if beats == 0 {
		beats = sequence.DefaultBeats
	}
	return &Timeline{
		Title:    doc.Title,
		Composer: doc.Composer,
		Tempo:    tempo,
		Beats:    beats,
		Voices:   reg.Voices(),
		Events:   sequence.Merge(tracks),
	}, nil
}

// CompileFile reads and compiles a melo source file.
func CompileFile(path string) (*Timeline, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(string(src))
}
