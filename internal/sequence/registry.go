package sequence

import "github.com/Mistodon/melo/internal/notation"

// Defaults for omitted voice attributes and piece settings. Omission is the
// common case, so these are fixed and documented rather than configurable.
const (
	DefaultVolume = 100
	DefaultTempo  = 120
	DefaultBeats  = 4

	// drumChannel is the General MIDI percussion channel; auto-assignment
	// skips it and `drums: true` voices are pinned to it.
	drumChannel = 9

	maxChannel = 15
)

// Voice is a resolved voice declaration: every attribute filled in, ranges
// checked. Voices are immutable after BuildRegistry; play blocks reference
// them by name only.
type Voice struct {
	Name    string `yaml:"name"`
	Program int    `yaml:"program"`
	Channel int    `yaml:"channel"`
	Volume  int    `yaml:"volume"`
	Octave  int    `yaml:"octave"`
	Drums   bool   `yaml:"drums,omitempty"`
}

// Registry owns the resolved voices of a document and resolves play-block
// references. Iteration order is declaration order.
type Registry struct {
	voices []Voice
	byName map[string]int
}

// BuildRegistry resolves and validates all voice declarations. Channels
// omitted from a declaration auto-increment in declaration order, skipping
// the percussion channel; the counter is not affected by explicitly chosen
// channels, keeping the assignment a pure function of declaration order.
func BuildRegistry(decls []notation.VoiceDecl) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(decls))}
	nextChannel := 0
	for _, decl := range decls {
		if _, dup := r.byName[decl.Name]; dup {
			return nil, &DuplicateVoiceError{Name: decl.Name, Line: decl.Line, Col: decl.Col}
		}
		v := Voice{Name: decl.Name, Volume: DefaultVolume}
		if decl.Program != nil {
			if *decl.Program < 0 || *decl.Program > 127 {
				return nil, &InvalidAttributeError{Voice: decl.Name, Attr: "program", Value: *decl.Program, Line: decl.Line, Col: decl.Col}
			}
			v.Program = *decl.Program
		}
		if decl.Volume != nil {
			if *decl.Volume < 0 || *decl.Volume > 127 {
				return nil, &InvalidAttributeError{Voice: decl.Name, Attr: "volume", Value: *decl.Volume, Line: decl.Line, Col: decl.Col}
			}
			v.Volume = *decl.Volume
		}
		if decl.Octave != nil {
			v.Octave = *decl.Octave
		}
		if decl.Drums != nil {
			v.Drums = *decl.Drums
		}
		switch {
		case v.Drums:
			v.Channel = drumChannel
		case decl.Channel != nil:
			if *decl.Channel < 0 || *decl.Channel > maxChannel {
				return nil, &InvalidAttributeError{Voice: decl.Name, Attr: "channel", Value: *decl.Channel, Line: decl.Line, Col: decl.Col}
			}
			v.Channel = *decl.Channel
		default:
			nextChannel %= maxChannel + 1
			if nextChannel == drumChannel {
				nextChannel++
			}
			v.Channel = nextChannel
			nextChannel++
		}
		r.byName[decl.Name] = len(r.voices)
		r.voices = append(r.voices, v)
	}
	return r, nil
}

// Lookup resolves a play block's voice reference. The result is a copy, so
// the registry stays immutable however callers treat it.
func (r *Registry) Lookup(play notation.PlayBlock) (*Voice, error) {
	i, ok := r.byName[play.Voice]
	if !ok {
		return nil, &UnknownVoiceError{Name: play.Voice, Line: play.Line, Col: play.Col}
	}
	v := r.voices[i]
	return &v, nil
}

// Voices returns a copy of the resolved voices in declaration order.
func (r *Registry) Voices() []Voice {
	out := make([]Voice, len(r.voices))
	copy(out, r.voices)
	return out
}
