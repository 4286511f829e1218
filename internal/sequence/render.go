package sequence

import "github.com/Mistodon/melo/internal/notation"

// Event is one performance event on the timeline. Start and Duration are in
// whole bars; Note is the final MIDI pitch with the voice's octave shift
// applied; Velocity comes from the voice volume.
type Event struct {
	Start    Fraction `yaml:"start"`
	Duration Fraction `yaml:"duration"`
	Note     int      `yaml:"note"`
	Channel  int      `yaml:"channel"`
	Velocity int      `yaml:"velocity"`
	Voice    string   `yaml:"voice"`
}

// End returns Start + Duration.
func (e Event) End() Fraction { return e.Start.Add(e.Duration) }

// RenderTrack walks one play block against its resolved voice and emits the
// voice's events in absolute time, cursor starting at zero. The sustain
// lookback is the fold state here: a hold token extends the last emitted
// event while no rest has intervened, and a hold before any note at all is a
// DanglingSustainError. Rests advance the cursor silently. The cursor is
// monotonic, so events of one track never overlap each other.
func RenderTrack(voice *Voice, play notation.PlayBlock) ([]Event, error) {
	events := make([]Event, 0, len(play.Bars)*4)
	cursor := Frac(0, 1)
	holdLive := false
	first := true
	for _, bar := range play.Bars {
		for _, tt := range TimeBar(bar) {
			switch tt.Token.Kind {
			case notation.TokenRest:
				holdLive = false
			case notation.TokenHold:
				if first {
					return nil, &DanglingSustainError{Voice: play.Voice, Line: tt.Token.Line, Col: tt.Token.Col}
				}
				if holdLive {
					last := &events[len(events)-1]
					last.Duration = last.Duration.Add(tt.Duration)
				}
			case notation.TokenPitch:
				note := tt.Token.Pitch + voice.Octave*12
				if note < 0 || note > 127 {
					return nil, &InvalidAttributeError{Voice: voice.Name, Attr: "octave", Value: voice.Octave, Line: tt.Token.Line, Col: tt.Token.Col}
				}
				events = append(events, Event{
					Start:    cursor,
					Duration: tt.Duration,
					Note:     note,
					Channel:  voice.Channel,
					Velocity: voice.Volume,
					Voice:    voice.Name,
				})
				holdLive = true
			}
			cursor = cursor.Add(tt.Duration)
			first = false
		}
	}
	return events, nil
}
