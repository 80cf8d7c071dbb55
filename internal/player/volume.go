package player

import (
	"strconv"

	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/storage"
)

// VolumeState names the volume icon variant.
type VolumeState string

const (
	VolumeMuted VolumeState = "muted"
	VolumeZero  VolumeState = "zero"
	VolumeHigh  VolumeState = "high"
)

var volumeGlyphs = map[VolumeState]string{
	VolumeMuted: "🔇",
	VolumeZero:  "🔈",
	VolumeHigh:  "🔊",
}

// IconState picks the volume icon for a volume and mute flag.
func IconState(volume float64, muted bool) VolumeState {
	switch {
	case muted:
		return VolumeMuted
	case volume <= 0:
		return VolumeZero
	default:
		return VolumeHigh
	}
}

// Glyph returns the icon glyph for s.
func (s VolumeState) Glyph() string { return volumeGlyphs[s] }

// SetVolume applies v (clamped to 0..1) to the current audio, updates the slider, percentage and icon, and stores
// it.
func (c *Controller) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	c.volume = v

	if c.current != nil {
		c.current.Media().SetVolume(v)
	}
	c.renderVolume()

	if err := c.store.SetItem(storage.KeyVolume, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		c.logger.Error("failed to save volume", "error", err)
	}
}

// ToggleMute mutes or unmutes the current audio.
func (c *Controller) ToggleMute() {
	if c.current == nil {
		return
	}
	m := c.current.Media()
	m.SetMuted(!m.Muted())
	c.updateVolumeIcon()
}

// Muted reports whether the current audio is muted.
func (c *Controller) Muted() bool {
	return c.current != nil && c.current.Media().Muted()
}

func (c *Controller) onVolumeInput(ev *dom.Event) {
	v, err := strconv.ParseFloat(ev.Value, 64)
	if err != nil {
		c.logger.Warn("invalid volume", "value", ev.Value)
		return
	}
	c.SetVolume(v)
}

func (c *Controller) restoreVolume() {
	raw, ok := c.store.GetItem(storage.KeyVolume)
	if !ok {
		c.renderVolume()
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warn("ignoring stored volume", "value", raw)
		c.renderVolume()
		return
	}
	c.volume = min(max(v, 0), 1)
	c.renderVolume()
}

func (c *Controller) renderVolume() {
	if slider := c.doc.Query("#volume"); slider != nil {
		slider.SetAttr("value", strconv.FormatFloat(c.volume, 'f', -1, 64))
	}
	if pct := c.doc.Query(".left-controlls span"); pct != nil {
		pct.SetText(FormatPercent(c.volume))
	}
	c.updateVolumeIcon()
}

func (c *Controller) updateVolumeIcon() {
	icon := c.doc.Query(".volume-controls .volume-icon")
	if icon == nil {
		return
	}
	state := IconState(c.volume, c.Muted())
	icon.SetData("state", string(state))
	icon.SetText(state.Glyph())
}
