package melo

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/Mistodon/melo/internal/midifile"
	"github.com/Mistodon/melo/internal/synth"
)

// SoundFont is an SF2 instrument bank used for audio rendering.
type SoundFont = meltysynth.SoundFont

// LoadSoundFont reads an SF2 file from disk.
func LoadSoundFont(path string) (*SoundFont, error) {
	return synth.LoadSoundFont(path)
}

// RenderSamples renders the whole timeline offline and returns interleaved
// stereo float32 samples, peak-normalized, including a short release tail.
func RenderSamples(tl *Timeline, sf *SoundFont, sampleRate int) ([]float32, error) {
	r, err := synth.NewRenderer(tl, sf, sampleRate)
	if err != nil {
		return nil, err
	}
	return r.RenderAll(), nil
}

// WriteMIDI serializes the timeline as a format-1 Standard MIDI File.
func WriteMIDI(tl *Timeline, w io.Writer) error {
	return midifile.Write(tl, w)
}

// EncodeWAVFloat32LE wraps raw float32 samples in a WAV container
// (IEEE float format).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
