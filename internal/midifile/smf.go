// Package midifile serializes a compiled timeline as a format-1 Standard
// MIDI File: a conductor track carrying the piece meta events, then one
// track per voice.
package midifile

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Mistodon/melo/internal/sequence"
)

// TicksPerQuarter is the SMF resolution. 480 divides cleanly for halves,
// thirds, quarters, fifths, sixths and eighths of a beat; coarser splits
// round to the nearest tick only at this final serialization step.
const TicksPerQuarter = 480

// Write serializes the timeline to w.
func Write(tl *sequence.Timeline, w io.Writer) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	tempo, beats := tl.Tempo, tl.Beats
	if tempo <= 0 {
		tempo = sequence.DefaultTempo
	}
	if beats <= 0 {
		beats = sequence.DefaultBeats
	}

	var conductor smf.Track
	if tl.Title != "" {
		conductor.Add(0, smf.MetaTrackSequenceName(tl.Title))
	}
	if tl.Composer != "" {
		conductor.Add(0, smf.MetaText(tl.Composer))
	}
	conductor.Add(0, smf.MetaMeter(uint8(beats), 4))
	conductor.Add(0, smf.MetaTempo(float64(tempo)))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("midifile: add conductor track: %w", err)
	}

	for _, voice := range tl.Voices {
		events := eventsForVoice(tl, voice.Name)
		if len(events) == 0 {
			continue
		}
		tr := voiceTrack(voice, events, beats)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("midifile: add track %q: %w", voice.Name, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midifile: write: %w", err)
	}
	return nil
}

func eventsForVoice(tl *sequence.Timeline, name string) []sequence.Event {
	var out []sequence.Event
	for _, ev := range tl.Events {
		if ev.Voice == name {
			out = append(out, ev)
		}
	}
	return out
}

// message is an absolute-tick MIDI message awaiting delta encoding. kind
// orders messages sharing a tick: note-offs fire before note-ons so a
// repeated pitch retriggers instead of being cut by its own release.
type message struct {
	tick uint32
	kind int // 0 = note off, 1 = note on
	msg  midi.Message
}

func voiceTrack(voice sequence.Voice, events []sequence.Event, beats int) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaInstrument(voice.Name))
	tr.Add(0, midi.ProgramChange(uint8(voice.Channel), uint8(voice.Program)))

	msgs := make([]message, 0, len(events)*2)
	for _, ev := range events {
		on := barTicks(ev.Start, beats)
		off := barTicks(ev.End(), beats)
		if off <= on {
			off = on + 1
		}
		msgs = append(msgs,
			message{tick: on, kind: 1, msg: midi.NoteOn(uint8(ev.Channel), uint8(ev.Note), uint8(ev.Velocity))},
			message{tick: off, kind: 0, msg: midi.NoteOff(uint8(ev.Channel), uint8(ev.Note))},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].kind < msgs[j].kind
	})

	last := uint32(0)
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)
	return tr
}

// barTicks converts a bar-relative time to absolute ticks, rounding to the
// nearest tick.
func barTicks(t sequence.Fraction, beats int) uint32 {
	num := t.Num * int64(beats) * TicksPerQuarter
	return uint32((num + t.Den/2) / t.Den)
}
