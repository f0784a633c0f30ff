// Package audio plays short interface sounds, such as the chime when a
// hotspot is selected.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// Chime shape.
const (
	chimeFrequency = 880.0
	chimeDuration  = 90 * time.Millisecond
)

// Player plays sound effects on the default audio device.
type Player struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	volume      float64 // 0.0 to 1.0

	sound []byte // optional WAV replacing the built-in chime
}

// New creates a player at the given volume. Nothing is played until Init.
func New(volume float64) *Player {
	return &Player{
		sampleRate: DefaultSampleRate,
		volume:     clamp(volume, 0, 1),
	}
}

// Init opens the audio device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	p.initialized = true
	return nil
}

// Close stops playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Clear()
	}
	p.initialized = false
}

// SetVolume sets the volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clamp(vol, 0, 1)
}

// Volume returns the volume.
func (p *Player) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// SetSound replaces the built-in chime with WAV data. The data is decoded
// once up front so a bad file is reported immediately.
func (p *Player) SetSound(data []byte) error {
	s, _, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	s.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sound = data
	return nil
}

// PlaySelect plays the selection sound.
func (p *Player) PlaySelect() error {
	p.mu.RLock()
	initialized, vol, sound := p.initialized, p.volume, p.sound
	p.mu.RUnlock()

	if !initialized {
		return fmt.Errorf("audio not initialized")
	}

	s, err := p.selectStreamer(sound)
	if err != nil {
		return err
	}

	// The speaker mixes concurrent sounds itself.
	speaker.Play(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeToDb(vol),
		Silent:   vol <= 0,
	})
	return nil
}

func (p *Player) selectStreamer(sound []byte) (beep.Streamer, error) {
	if sound == nil {
		return Chime(p.sampleRate)
	}
	s, format, err := wav.Decode(io.NopCloser(bytes.NewReader(sound)))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if format.SampleRate != p.sampleRate {
		return beep.Resample(4, format.SampleRate, p.sampleRate, s), nil
	}
	return s, nil
}

// Chime returns a short sine blip with a linear fade-out.
func Chime(sr beep.SampleRate) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, chimeFrequency)
	if err != nil {
		return nil, fmt.Errorf("chime: %w", err)
	}
	return fadeOut(beep.Take(sr.N(chimeDuration), tone), sr.N(chimeDuration)), nil
}

// fadeOut scales s linearly from full to silent over n samples.
func fadeOut(s beep.Streamer, n int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		filled, ok := s.Stream(samples)
		for i := range samples[:filled] {
			gain := 1 - float64(pos)/float64(n)
			if gain < 0 {
				gain = 0
			}
			samples[i][0] *= gain
			samples[i][1] *= gain
			pos++
		}
		return filled, ok
	})
}

// volumeToDb converts a 0-1 volume to the base-2 exponent effects.Volume
// expects: vol=1 -> 0, vol=0.5 -> -1.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
