package dom

import (
	"errors"
	"strconv"
	"time"
)

// DefaultPreviewLength is the duration, in seconds, assumed for audio elements without data-duration.
const DefaultPreviewLength = 30.0

// ErrNoSource is returned by [Media.Play] when the element has no source to play.
var ErrNoSource = errors.New("media has no supported source")

// Media is a simulated audio clock with the state of an HTML media element. Times are in seconds.
type Media struct {
	Src      string
	paused   bool
	current  float64
	duration float64
	volume   float64
	muted    bool
}

func newMedia(src string, duration float64) *Media {
	return &Media{Src: src, paused: true, duration: duration, volume: 1}
}

// Play starts playback, restarting from 0 when the clock had reached the end.
func (m *Media) Play() error {
	if m.Src == "" {
		return ErrNoSource
	}
	if m.duration > 0 && m.current >= m.duration {
		m.current = 0
	}
	m.paused = false
	return nil
}

func (m *Media) Pause()                { m.paused = true }
func (m *Media) Paused() bool          { return m.paused }
func (m *Media) CurrentTime() float64  { return m.current }
func (m *Media) Duration() float64     { return m.duration }
func (m *Media) Volume() float64       { return m.volume }
func (m *Media) Muted() bool           { return m.muted }
func (m *Media) SetMuted(muted bool)   { m.muted = muted }
func (m *Media) SetDuration(d float64) { m.duration = max(d, 0) }

// SetCurrentTime seeks to t, clamped to [0, duration].
func (m *Media) SetCurrentTime(t float64) {
	m.current = min(max(t, 0), m.duration)
}

// SetVolume sets the volume, clamped to [0, 1].
func (m *Media) SetVolume(v float64) {
	m.volume = min(max(v, 0), 1)
}

// advance moves a playing clock forward, pausing it at the end.
func (m *Media) advance(dt time.Duration) (changed, ended bool) {
	if m.paused || dt <= 0 {
		return false, false
	}
	m.current += dt.Seconds()
	if m.current >= m.duration {
		m.current = m.duration
		m.paused = true
		return true, true
	}
	return true, false
}

func parseSeconds(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
