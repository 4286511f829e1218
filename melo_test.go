package melo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Mistodon/melo/internal/sequence"
)

const examplePiece = `
title: "Fanfare"
tempo: 96
beats: 4

voice Trumpet { program: 56, octave: 1 }
voice Bass { program: 33, octave: -2 }

play Trumpet {
    :| C E G c |
}
play Bass {
    :| C - - - |
}
`

func TestCompileExamplePiece(t *testing.T) {
	tl, err := Compile(examplePiece)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if tl.Title != "Fanfare" || tl.Tempo != 96 || tl.Beats != 4 {
		t.Fatalf("piece attributes: got %q/%d/%d", tl.Title, tl.Tempo, tl.Beats)
	}
	if len(tl.Voices) != 2 {
		t.Fatalf("voices: got %d, want 2", len(tl.Voices))
	}

	wantNotes := []struct {
		start sequence.Fraction
		note  int
		voice string
	}{
		{sequence.Frac(0, 1), 72, "Trumpet"}, // C up one octave
		{sequence.Frac(0, 1), 36, "Bass"},    // C down two octaves
		{sequence.Frac(1, 4), 76, "Trumpet"},
		{sequence.Frac(1, 2), 79, "Trumpet"},
		{sequence.Frac(3, 4), 84, "Trumpet"},
	}
	if len(tl.Events) != len(wantNotes) {
		t.Fatalf("events: got %d, want %d", len(tl.Events), len(wantNotes))
	}
	for i, want := range wantNotes {
		ev := tl.Events[i]
		if ev.Start != want.start || ev.Note != want.note || ev.Voice != want.voice {
			t.Fatalf("event %d: got start=%v note=%d voice=%q, want start=%v note=%d voice=%q",
				i, ev.Start, ev.Note, ev.Voice, want.start, want.note, want.voice)
		}
		if ev.Duration != sequence.Frac(1, 4) {
			t.Fatalf("event %d duration: got %v, want 1/4", i, ev.Duration)
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	first, err := Compile(examplePiece)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compile(examplePiece)
		if err != nil {
			t.Fatalf("compile run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different timeline", i)
		}
	}
}

func TestCompileDefaults(t *testing.T) {
	tl, err := Compile(`voice V {}
play V { :| C | }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if tl.Tempo != 120 || tl.Beats != 4 {
		t.Fatalf("defaults: got tempo=%d beats=%d, want 120/4", tl.Tempo, tl.Beats)
	}
	if tl.Events[0].Velocity != 100 {
		t.Fatalf("default velocity: got %d, want 100", tl.Events[0].Velocity)
	}
}

func TestCompileUnknownVoice(t *testing.T) {
	_, err := Compile(`voice A {}
play B { :| C | }`)
	var unknown *UnknownVoiceError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownVoiceError", err)
	}
	if unknown.Name != "B" {
		t.Fatalf("unknown voice name: got %q, want B", unknown.Name)
	}
}

func TestCompileDuplicateVoice(t *testing.T) {
	_, err := Compile(`voice A {}
voice A {}`)
	var dup *DuplicateVoiceError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicateVoiceError", err)
	}
}

func TestCompileSyntaxErrorPosition(t *testing.T) {
	_, err := Compile("voice A {\n  bogus: 3\n}")
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("got %v, want SyntaxError", err)
	}
	if syn.Line != 2 {
		t.Fatalf("error line: got %d, want 2", syn.Line)
	}
}

func TestCompileFirstErrorInSourceOrder(t *testing.T) {
	// Both play blocks are bad; the earlier one's error must surface.
	_, err := Compile(`voice A {}
play Missing { :| C | }
play A { :| . C | }`)
	var unknown *UnknownVoiceError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownVoiceError from the first bad block", err)
	}
}
