package melo

import (
	"errors"
	"sync"
	"sync/atomic"

	intaudio "github.com/Mistodon/melo/internal/audio"
	"github.com/Mistodon/melo/internal/synth"
)

// PlaybackEvent carries playback notifications from Watch().
type PlaybackEvent struct {
	Kind int
}

const (
	EventPlaybackEnded int = iota
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	sampleTap func([]float32)
	volume    float64
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{volume: 1}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// WithVolume sets the initial playback volume. 1.0 is default.
func WithVolume(volume float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.volume = volume
	}
}

// Player plays compiled timelines through the system audio device, using a
// SoundFont for synthesis.
type Player struct {
	mu         sync.Mutex
	sf         *SoundFont
	sampleRate int
	volume     float64
	sampleTap  func([]float32)
	audio      *intaudio.Player
	done       chan struct{}
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// eventWrapper wraps a synth renderer and implements SampleSource +
// FinishingSource so the stream ends, and listeners hear about it, when the
// piece plays out.
type eventWrapper struct {
	src      *synth.Renderer
	finished atomic.Bool
	onEnd    func()
	tap      func([]float32)
}

func (w *eventWrapper) Process(dst []float32) {
	w.src.Process(dst)
	if w.tap != nil {
		w.tap(dst)
	}
	if w.src.Finished() && !w.finished.Swap(true) {
		if w.onEnd != nil {
			w.onEnd()
		}
	}
}

func (w *eventWrapper) Finished() bool {
	return w.finished.Load()
}

func NewPlayer(sampleRate int, sf *SoundFont, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if sf == nil {
		return nil, errors.New("soundfont is required")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		sf:         sf,
		sampleRate: sampleRate,
		volume:     cfg.volume,
		sampleTap:  cfg.sampleTap,
	}, nil
}

// PlayText compiles melo source text and starts playing it.
func (p *Player) PlayText(text string) error {
	tl, err := Compile(text)
	if err != nil {
		return err
	}
	return p.Play(tl)
}

// Play starts playback of a compiled timeline, replacing any playback in
// progress. It returns as soon as the stream is running; use Wait or Watch
// to observe the end.
func (p *Player) Play(tl *Timeline) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Signal any existing Wait() that the previous playback was replaced.
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})

	// A fresh renderer per Play keeps synth voice state from leaking
	// between pieces.
	src, err := synth.NewRenderer(tl, p.sf, p.sampleRate)
	if err != nil {
		return err
	}
	wrapper := &eventWrapper{src: src, tap: p.sampleTap}
	wrapper.onEnd = func() {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
		p.signalDone()
	}

	backend, err := intaudio.NewPlayer(p.sampleRate, wrapper)
	if err != nil {
		return err
	}
	backend.SetVolume(p.volume)
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.audio = backend
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends. It returns immediately if no
// playback is active or if it was stopped.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel receiving playback events. The channel is buffered
// (cap 8); receive in a goroutine to avoid blocking the audio thread. Only
// the most recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetVolume sets the playback volume. 1.0 is default.
func (p *Player) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.audio != nil {
		p.audio.SetVolume(volume)
	}
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PlaybackPosition returns the current output position of the audio driver
// in samples, i.e. what the listener actually hears right now. Returns 0 if
// not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
