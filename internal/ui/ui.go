package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/library"
	"github.com/desertthunder/soundcheck/internal/player"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/storage"
)

const (
	// TickInterval is how often playback clocks advance.
	TickInterval = 250 * time.Millisecond

	seekStep   = 5.0
	volumeStep = 0.1
	recentRows = 3
)

var themeCycle = map[player.Theme]player.Theme{
	player.ThemeLight:  player.ThemeDark,
	player.ThemeDark:   player.ThemeSystem,
	player.ThemeSystem: player.ThemeLight,
}

// Options configures a [Model].
type Options struct {
	Document *dom.Document
	Store    storage.Store
	// Loader fills the page's playlist container. Without one only the static previews are listed.
	Loader     *library.Loader
	Logger     *log.Logger
	SystemDark bool
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	doc     *dom.Document
	player  *player.Controller
	loader  *library.Loader
	sched   *loopScheduler
	logger  *log.Logger
	width   int
	height  int
	tracks  list.Model
	bar     progress.Model
	spin    spinner.Model
	loading bool
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model playing the previews of opts.Document.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Document == nil {
		opts.Document = dom.NewDocument()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	sched := newLoopScheduler()
	ctrl := player.New(player.Options{
		Document:   opts.Document,
		Store:      opts.Store,
		Scheduler:  sched,
		Logger:     opts.Logger,
		SystemDark: opts.SystemDark,
	})

	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	tracks.Title = "Previews"
	tracks.SetShowHelp(false)

	return &Model{
		ctx:    ctx,
		doc:    opts.Document,
		player: ctrl,
		loader: opts.Loader,
		sched:  sched,
		logger: opts.Logger,
		tracks: tracks,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Player returns the controller driving the page.
func (m *Model) Player() *player.Controller { return m.player }

// Init wires the page's handlers, lists the static previews and starts loading playlists.
func (m *Model) Init() tea.Cmd {
	m.player.Init()
	if m.loader != nil {
		m.loader.Bind()
	}
	m.tracks.SetItems(collectItems(m.doc))

	return tea.Batch(m.sched.wait(), tick(), m.spin.Tick, m.fetchPlaylists())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracks.SetSize(msg.Width-4, max(msg.Height-14, 4))
		m.bar.Width = max(msg.Width-24, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		m.doc.Tick(msg.data.(time.Duration))
		return m, tick()

	case MsgScheduled:
		msg.data.(func())()
		return m, m.sched.wait()

	case MsgPlaylistsFetched:
		res := msg.data.(library.Result)
		m.loader.Apply(res)
		m.loading = false
		if res.Err != nil {
			m.logger.Error("failed to load playlists", "error", res.Err)
		}
		m.tracks.SetItems(collectItems(m.doc))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tracks.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.tracks, cmd = m.tracks.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.play):
		if item, ok := m.tracks.SelectedItem().(trackItem); ok {
			m.play(item.audio)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.click(".play-btn")
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.click(".next")
		m.selectCurrent()
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.click(".prev")
		m.selectCurrent()
		return m, nil
	case key.Matches(msg, m.keys.forward):
		m.seekBy(seekStep)
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.seekBy(-seekStep)
		return m, nil
	case key.Matches(msg, m.keys.louder):
		m.setVolume(m.player.Volume() + volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.quieter):
		m.setVolume(m.player.Volume() - volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.mute):
		m.click(".volume-controls")
		return m, nil
	case key.Matches(msg, m.keys.theme):
		m.player.SetTheme(themeCycle[m.player.Theme()])
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.login):
		if btn := m.doc.Query("#login-btn"); btn != nil && btn.Visible() {
			m.click("#login-btn")
		}
		return m, nil
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

// play clicks the item holding audio so the page's own handlers pick the track.
func (m *Model) play(audio *dom.Node) {
	target := audio.Parent
	if target == nil {
		m.player.PlayAudio(audio)
		return
	}
	m.doc.Dispatch(&dom.Event{Type: dom.Click, Target: target})
	m.logger.Debug("play", "title", audio.Data("title"), "playing", m.player.Playing())
}

func (m *Model) click(sel string) {
	if el := m.doc.Query(sel); el != nil {
		m.doc.Dispatch(&dom.Event{Type: dom.Click, Target: el})
	}
}

// setVolume drives the volume slider the way dragging it would.
func (m *Model) setVolume(v float64) {
	v = min(max(v, 0), 1)
	slider := m.doc.Query("#volume")
	if slider == nil {
		m.player.SetVolume(v)
		return
	}
	value := strconv.FormatFloat(v, 'f', 2, 64)
	slider.SetAttr("value", value)
	m.doc.Dispatch(&dom.Event{Type: dom.Input, Target: slider, Value: value})
}

func (m *Model) seekBy(seconds float64) {
	cur := m.player.Current()
	if cur == nil {
		return
	}
	media := cur.Media()
	if media.Duration() <= 0 {
		return
	}
	m.player.Seek((media.CurrentTime() + seconds) / media.Duration())
}

// selectCurrent moves the list cursor onto the current track.
func (m *Model) selectCurrent() {
	cur := m.player.Current()
	for i, it := range m.tracks.Items() {
		if item, ok := it.(trackItem); ok && item.audio == cur {
			m.tracks.Select(i)
			return
		}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	m.loader.Begin()
	m.loading = true
	return func() tea.Msg {
		return playlistsFetchedMsg(m.loader.Fetch(m.ctx))
	}
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(time.Time) tea.Msg { return tickMsg(TickInterval) })
}

func (m *Model) styles() *Palette {
	if m.player.DarkMode() {
		return darkStyles
	}
	return lightStyles
}

// View renders the track list, the player bar and the status lines.
func (m *Model) View() string {
	s := m.styles()
	var b strings.Builder

	b.WriteString(s.title.Render("soundcheck"))
	b.WriteString("\n")

	if m.loading {
		fmt.Fprintf(&b, "%s Loading playlists...\n", m.spin.View())
	}
	if banner := m.doc.Query(".error"); banner != nil && banner.Visible() {
		b.WriteString(s.err.Render(banner.TextContent()))
		b.WriteString("\n")
		if btn := m.doc.Query("#login-btn"); btn != nil && btn.Visible() {
			b.WriteString(s.warn.Render("Press o to log in with Spotify"))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.tracks.View())
	b.WriteString("\n")
	b.WriteString(m.renderPlayer())
	b.WriteString("\n")

	if box := m.doc.Query(".now-playing-notification"); box != nil && box.HasClass("show") {
		b.WriteString(s.ok.Render("Now playing: " + m.text(".notification-song")))
		b.WriteString("\n")
	}
	if recent := m.renderRecent(); recent != "" {
		b.WriteString(recent)
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPlayer() string {
	s := m.styles()

	state := "▶"
	if icon := m.doc.Query(".play-btn .pause-icon"); icon != nil && icon.Visible() {
		state = "⏸"
	}

	title := m.text(".box h3")
	if artist := m.text(".box p"); artist != "" {
		title += " · " + artist
	}

	var fraction float64
	if bar := m.doc.Query("#progress-bar"); bar != nil {
		if pct, err := strconv.ParseFloat(bar.Attr("value"), 64); err == nil {
			fraction = pct / 100
		}
	}

	line := fmt.Sprintf("%s %s %s %s", m.text(".current-time"), m.bar.ViewAs(fraction), m.text(".total-time"),
		m.text(".volume-controls .volume-icon")+" "+m.text(".left-controlls span"))

	return s.player.Render(fmt.Sprintf("%s %s\n%s", state, title, line))
}

func (m *Model) renderRecent() string {
	rows := m.doc.QueryAll(".recent-track")
	if len(rows) == 0 {
		return ""
	}
	s := m.styles()
	lines := []string{s.help.Render("Recently played")}
	for _, row := range rows[:min(len(rows), recentRows)] {
		title, date := "", ""
		if h := row.Query(".track-info h3"); h != nil {
			title = h.TextContent()
		}
		if p := row.Query(".track-info p"); p != nil {
			date = p.TextContent()
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", title, s.help.Render(date)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) text(sel string) string {
	if el := m.doc.Query(sel); el != nil {
		return el.TextContent()
	}
	return ""
}
