// Package synth renders a compiled timeline to audio samples through a
// General MIDI SoundFont.
package synth

import (
	"errors"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/Mistodon/melo/internal/sequence"
)

// blockSize is the fixed render granularity. It matches the synthesizer's
// internal block size so effect buffers never straddle odd boundaries.
const blockSize = 1024

// tailSeconds of extra audio past the last note-off, so releases and
// reverb decay instead of being cut.
const tailSeconds = 1.0

const programChange = 0xC0

// synthesizer is the subset of meltysynth.Synthesizer the renderer drives.
// Tests substitute a recording implementation.
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1, data2 int32)
	NoteOn(channel, key, velocity int32)
	NoteOff(channel, key int32)
	Render(left, right []float32)
}

var newSynthesizer = func(sf *meltysynth.SoundFont, settings *meltysynth.SynthesizerSettings) (synthesizer, error) {
	return meltysynth.NewSynthesizer(sf, settings)
}

// LoadSoundFont reads an SF2 file from disk.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("synth: open soundfont: %w", err)
	}
	defer f.Close()
	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("synth: parse soundfont %q: %w", path, err)
	}
	return sf, nil
}

// noteSpan is a timeline event mapped to sample positions. sounding tracks
// whether its note-on has fired but not yet its note-off.
type noteSpan struct {
	channel, key, velocity int32
	start, end             int
	sounding               bool
}

// Renderer streams a timeline through a SoundFont synthesizer. It satisfies
// the audio package's SampleSource and FinishingSource interfaces: Process
// fills interleaved stereo float32 frames, and Finished reports when the
// piece and its release tail have fully played out.
//
// A Renderer is single-use and not safe for concurrent use.
type Renderer struct {
	syn    synthesizer
	spans  []noteSpan
	pos    int // absolute sample position of the next block
	total  int // piece length plus tail, in samples
	left   []float32
	right  []float32
	pend   []float32 // interleaved leftovers from the last block
	pendAt int
}

// NewRenderer builds a renderer for the timeline at the given sample rate.
// Voice programs are applied up front; events keep their timeline order.
func NewRenderer(tl *sequence.Timeline, sf *meltysynth.SoundFont, sampleRate int) (*Renderer, error) {
	if sampleRate <= 0 {
		return nil, errors.New("synth: sample rate must be positive")
	}
	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	settings.BlockSize = blockSize
	syn, err := newSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("synth: create synthesizer: %w", err)
	}

	for _, v := range tl.Voices {
		syn.ProcessMidiMessage(int32(v.Channel), programChange, int32(v.Program), 0)
	}

	barSamples := tl.BarSeconds() * float64(sampleRate)
	spans := make([]noteSpan, 0, len(tl.Events))
	maxEnd := 0
	for _, ev := range tl.Events {
		start := int(ev.Start.Float()*barSamples + 0.5)
		end := int(ev.End().Float()*barSamples + 0.5)
		if end <= start {
			end = start + 1
		}
		spans = append(spans, noteSpan{
			channel:  int32(ev.Channel),
			key:      int32(ev.Note),
			velocity: int32(ev.Velocity),
			start:    start,
			end:      end,
		})
		if end > maxEnd {
			maxEnd = end
		}
	}

	return &Renderer{
		syn:   syn,
		spans: spans,
		total: maxEnd + int(tailSeconds*float64(sampleRate)),
		left:  make([]float32, blockSize),
		right: make([]float32, blockSize),
		pend:  make([]float32, 0, blockSize*2),
	}, nil
}

// Process fills dst with interleaved stereo frames. Past the end of the
// piece it keeps rendering the synthesizer's (silent) output, so the stream
// stays well-formed until the caller observes Finished.
func (r *Renderer) Process(dst []float32) {
	for len(dst) > 0 {
		if r.pendAt >= len(r.pend) {
			r.renderBlock()
		}
		n := copy(dst, r.pend[r.pendAt:])
		r.pendAt += n
		dst = dst[n:]
	}
}

// Finished reports whether every note and the release tail have been
// rendered.
func (r *Renderer) Finished() bool {
	return r.pos >= r.total
}

// TotalSamples is the per-channel length of the full piece including the
// release tail.
func (r *Renderer) TotalSamples() int { return r.total }

func (r *Renderer) renderBlock() {
	r.fireEvents(r.pos, blockSize)
	r.syn.Render(r.left, r.right)
	r.pend = r.pend[:blockSize*2]
	for i := 0; i < blockSize; i++ {
		r.pend[2*i] = r.left[i]
		r.pend[2*i+1] = r.right[i]
	}
	r.pendAt = 0
	r.pos += blockSize
}

// fireEvents sends the MIDI messages falling inside [start, start+count).
// Note-offs go first so a pitch repeated back-to-back inside one block
// releases before it retriggers. A second off pass runs after the ons for
// spans shorter than a block, whose note-on and note-off land in the same
// window; without it those notes would never be released.
func (r *Renderer) fireEvents(start, count int) {
	end := start + count
	for i := range r.spans {
		s := &r.spans[i]
		if s.sounding && s.end < end {
			r.syn.NoteOff(s.channel, s.key)
			s.sounding = false
		}
	}
	for i := range r.spans {
		s := &r.spans[i]
		if !s.sounding && s.start >= start && s.start < end && s.end > s.start {
			r.syn.NoteOn(s.channel, s.key, s.velocity)
			s.sounding = true
		}
	}
	for i := range r.spans {
		s := &r.spans[i]
		if s.sounding && s.end < end {
			r.syn.NoteOff(s.channel, s.key)
			s.sounding = false
		}
	}
}

// RenderAll renders the whole piece in one call and peak-normalizes the
// result. The returned slice holds interleaved stereo frames.
func (r *Renderer) RenderAll() []float32 {
	out := make([]float32, 0, r.total*2)
	buf := make([]float32, blockSize*2)
	for !r.Finished() {
		r.Process(buf)
		out = append(out, buf...)
	}
	out = out[:r.total*2]
	normalize(out)
	return out
}

// normalize scales samples so the loudest peak sits just under full scale.
// Quiet renders are boosted, hot ones pulled back before they clip.
func normalize(samples []float32) {
	var peak float32
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return
	}
	gain := 0.99 / peak
	if gain == 1 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}
