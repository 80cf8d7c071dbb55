package player

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/storage"
	"golang.org/x/time/rate"
)

// NotificationDuration is how long the now playing notification stays visible.
const NotificationDuration = 3 * time.Second

// Scheduler runs deferred work. Front-ends with an event loop supply one that runs fn on that loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// Options configures a [Controller].
type Options struct {
	Document   *dom.Document
	Store      storage.Store
	Scheduler  Scheduler
	Logger     *log.Logger
	Now        func() time.Time
	Groups     []NavGroup
	SystemDark bool
}

// Controller drives the player page: one current audio element, transport controls, progress, volume, dialogs,
// the recently played list and the theme.
//
// A Controller is not safe for concurrent use; all calls and event dispatches must come from one goroutine.
type Controller struct {
	doc        *dom.Document
	store      storage.Store
	sched      Scheduler
	logger     *log.Logger
	now        func() time.Time
	groups     []NavGroup
	systemDark bool

	current  *dom.Node
	volume   float64
	dragging bool
	notices  int
	progress rate.Sometimes
}

// New creates a controller. Call [Controller.Init] before dispatching events.
func New(opts Options) *Controller {
	if opts.Document == nil {
		opts.Document = dom.NewDocument()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Groups == nil {
		opts.Groups = DefaultGroups
	}

	return &Controller{
		doc:        opts.Document,
		store:      opts.Store,
		sched:      opts.Scheduler,
		logger:     opts.Logger,
		now:        opts.Now,
		groups:     opts.Groups,
		systemDark: opts.SystemDark,
		volume:     1,
		progress:   rate.Sometimes{First: 1, Interval: 5 * time.Second},
	}
}

// Init registers the page's event handlers and restores the stored volume, theme and recently played list.
func (c *Controller) Init() {
	d := c.doc

	d.On(dom.Click, ".playlist-item", c.onItemClick)
	d.On(dom.Click, ".album", c.onAlbumClick)
	d.On(dom.Click, ".play-btn", func(*dom.Event) { c.TogglePlayback() })
	d.On(dom.Click, ".prev", func(*dom.Event) { c.Step(-1) })
	d.On(dom.Click, ".next", func(*dom.Event) { c.Step(1) })

	d.On(dom.Click, "#progress-bar", func(ev *dom.Event) { c.SeekTo(ev.ClientX) })
	d.On(dom.MouseDown, "#progress-bar", func(*dom.Event) { c.dragging = true })
	d.On(dom.MouseMove, "", func(ev *dom.Event) {
		if c.dragging {
			c.SeekTo(ev.ClientX)
		}
	})
	d.On(dom.MouseUp, "", func(*dom.Event) { c.dragging = false })

	d.On(dom.Input, "#volume", c.onVolumeInput)
	d.On(dom.Click, ".volume-controls", func(*dom.Event) { c.ToggleMute() })

	d.On(dom.TimeUpdate, "audio", c.onTimeUpdate)
	d.On(dom.Ended, "audio", func(ev *dom.Event) {
		if ev.Target == c.current {
			c.updatePlayButton(false)
		}
	})

	d.On(dom.Click, ".soundtrack-item", c.onSoundtrackClick)
	d.On(dom.Click, ".close-dialog", func(ev *dom.Event) {
		c.closeDialog(ev.CurrentTarget.Closest(".playlist-dialog"))
		ev.StopPropagation()
	})
	d.On(dom.Click, ".playlist-dialog", func(ev *dom.Event) {
		if ev.Target == ev.CurrentTarget {
			c.closeDialog(ev.CurrentTarget)
		}
	})
	d.On(dom.Click, ".view-more", c.onViewMore)

	d.On(dom.Click, ".enableMenu", c.toggleThemeMenu)
	d.On(dom.Click, ".icons", c.chooseTheme)

	c.updatePlayButton(false)
	c.restoreVolume()
	c.applyTheme()
	c.renderRecent()
}

// Document returns the controlled document.
func (c *Controller) Document() *dom.Document { return c.doc }

// Current returns the current audio element, or nil.
func (c *Controller) Current() *dom.Node { return c.current }

// Volume returns the slider volume in 0..1.
func (c *Controller) Volume() float64 { return c.volume }

// Playing reports whether the current audio is playing.
func (c *Controller) Playing() bool {
	return c.current != nil && !c.current.Media().Paused()
}

// PlayAudio selects audio. Selecting the current audio toggles it; selecting another pauses and rewinds every
// other audio element, plays the new one and updates the player display.
func (c *Controller) PlayAudio(audio *dom.Node) {
	if audio == nil || audio.Media() == nil {
		return
	}
	if audio == c.current {
		c.TogglePlayback()
		return
	}

	for _, a := range c.doc.QueryAll("audio") {
		if a == audio {
			continue
		}
		m := a.Media()
		m.Pause()
		m.SetCurrentTime(0)
	}

	m := audio.Media()
	if err := m.Play(); err != nil {
		c.logger.Error("error playing audio", "title", audio.Data("title"), "error", err)
	}

	c.current = audio
	c.updatePlayButton(!m.Paused())
	c.updateDuration()
	c.updateProgress()
	c.updateVolumeIcon()

	if img := c.doc.Query(".player-image img"); img != nil && audio.Data("cover") != "" {
		img.SetAttr("src", audio.Data("cover"))
	}
	if title := c.doc.Query(".box h3"); title != nil && audio.Data("title") != "" {
		title.SetText(audio.Data("title"))
	}
	if artist := c.doc.Query(".box p"); artist != nil {
		artist.SetText(audio.Data("artist"))
	}

	c.record(audio)
	c.notify(audio)
}

// TogglePlayback plays or pauses the current audio.
func (c *Controller) TogglePlayback() {
	if c.current == nil {
		return
	}
	m := c.current.Media()
	if m.Paused() {
		if err := m.Play(); err != nil {
			c.logger.Error("error playing audio", "error", err)
		}
	} else {
		m.Pause()
	}
	c.updatePlayButton(!m.Paused())
}

// Seek moves the current audio to fraction (0..1) of its duration.
func (c *Controller) Seek(fraction float64) {
	if c.current == nil {
		return
	}
	m := c.current.Media()
	m.SetCurrentTime(fraction * m.Duration())
	c.updateProgress()
}

// SeekTo maps a pointer x position onto the progress bar's bounds and seeks there.
func (c *Controller) SeekTo(clientX float64) {
	bar := c.doc.Query("#progress-bar")
	if bar == nil || bar.Bounds.Width <= 0 {
		return
	}
	c.Seek((clientX - bar.Bounds.Left) / bar.Bounds.Width)
}

// Dragging reports whether a progress bar drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

func (c *Controller) onItemClick(ev *dom.Event) {
	if audio := ev.CurrentTarget.Query("audio"); audio != nil {
		c.PlayAudio(audio)
	}
}

func (c *Controller) onAlbumClick(ev *dom.Event) {
	container := ev.CurrentTarget.Query(".audio-container")
	if container == nil {
		c.logger.Error("no audio container found for album")
		return
	}
	audio := container.Query("audio")
	if audio == nil {
		c.logger.Error("audio element not found in container", "audio", container.Data("audio"))
		return
	}
	c.PlayAudio(audio)
}

func (c *Controller) onTimeUpdate(ev *dom.Event) {
	if ev.Target != c.current {
		return
	}
	c.updateProgress()
	c.progress.Do(func() {
		c.logger.Debug("time update", "title", ev.Target.Data("title"), "at", FormatTime(c.current.Media().CurrentTime()))
	})
}

func (c *Controller) updatePlayButton(playing bool) {
	btn := c.doc.Query(".play-btn")
	if btn == nil {
		return
	}
	if icon := btn.Query(".play-icon"); icon != nil {
		icon.Hidden = playing
	}
	if icon := btn.Query(".pause-icon"); icon != nil {
		icon.Hidden = !playing
	}
}

func (c *Controller) updateDuration() {
	if el := c.doc.Query(".total-time"); el != nil && c.current != nil {
		el.SetText(FormatTime(c.current.Media().Duration()))
	}
}

func (c *Controller) updateProgress() {
	if c.current == nil {
		return
	}
	m := c.current.Media()

	var pct float64
	if m.Duration() > 0 {
		pct = m.CurrentTime() / m.Duration() * 100
	}
	if bar := c.doc.Query("#progress-bar"); bar != nil {
		bar.SetAttr("value", strconv.FormatFloat(pct, 'f', -1, 64))
	}
	if el := c.doc.Query(".current-time"); el != nil {
		el.SetText(FormatTime(m.CurrentTime()))
	}
}

func (c *Controller) notify(audio *dom.Node) {
	box := c.doc.Query(".now-playing-notification")
	song := c.doc.Query(".notification-song")
	if box == nil || song == nil {
		return
	}

	text := audio.Data("title")
	if artist := audio.Data("artist"); artist != "" {
		text += " - " + artist
	}
	song.SetText(text)
	box.AddClass("show")

	c.notices++
	seq := c.notices
	c.sched.AfterFunc(NotificationDuration, func() {
		if seq == c.notices {
			box.RemoveClass("show")
		}
	})
}

func (c *Controller) onSoundtrackClick(ev *dom.Event) {
	index := -1
	for i, item := range c.doc.QueryAll(".soundtrack-item") {
		if item == ev.CurrentTarget {
			index = i
			break
		}
	}
	dialogs := c.doc.QueryAll(".playlist-dialog")
	if index < 0 || index >= len(dialogs) {
		return
	}
	c.OpenDialog(dialogs[index])
}

// OpenDialog shows dialog and locks page scrolling.
func (c *Controller) OpenDialog(dialog *dom.Node) {
	dialog.AddClass("show")
	if body := c.doc.Body(); body != nil {
		body.AddClass("no-scroll")
	}
}

func (c *Controller) closeDialog(dialog *dom.Node) {
	if dialog == nil {
		return
	}
	dialog.RemoveClass("show")
	if body := c.doc.Body(); body != nil {
		body.RemoveClass("no-scroll")
	}
}

func (c *Controller) onViewMore(ev *dom.Event) {
	grid := c.doc.Query(".soundtrack-grid.more")
	if grid == nil {
		return
	}
	if grid.ToggleClass("hidden") {
		ev.CurrentTarget.SetText("View More Soundtracks")
	} else {
		ev.CurrentTarget.SetText("View Less Soundtracks")
	}
}
