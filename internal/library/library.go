// Package library loads the signed-in user's playlists and renders them into the player page.
//
// [Loader.Load] asks the token broker for a token, fetches the user, their first playlists and the first tracks
// of each, and rebuilds the page's playlist container. Failures are surfaced the way the page shows them: an
// error banner with the login action for a missing token, a redirect to login on 401, an empty state on 404.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/services"
	"github.com/desertthunder/soundcheck/internal/shared"
)

const (
	// PlaylistLimit caps how many playlists are shown.
	PlaylistLimit = 6
	// TrackLimit is how many tracks are fetched per playlist.
	TrackLimit = 4

	// EmptyMessage is shown when the user has no playlists.
	EmptyMessage = "No playlists found. Create one in Spotify!"
)

// TokenSource provides access tokens from the broker.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	LoginURL() string
}

// API is the subset of the provider client the loader needs.
type API interface {
	CurrentUser(ctx context.Context, token string) (*services.SpotifyUser, error)
	UserPlaylists(ctx context.Context, token, userID string) (*services.SpotifyPaginatedPlaylists, error)
	PlaylistTracks(ctx context.Context, token, playlistID string, offset, limit int) ([]services.SpotifyTrack, error)
}

// Navigator sends the user to another page.
type Navigator interface {
	Navigate(url string)
}

// Track is a rendered track.
type Track struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artist  string `json:"artist,omitempty"`
	Cover   string `json:"cover,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// Label is the track's display text, "<name> - <first artist>".
func (t Track) Label() string {
	if t.Artist == "" {
		return t.Name
	}
	return t.Name + " - " + t.Artist
}

// Playlist is a rendered playlist with its first tracks.
type Playlist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Options configures a [Loader].
type Options struct {
	Document  *dom.Document
	Broker    TokenSource
	API       API
	Navigator Navigator
	Logger    *log.Logger
}

// Loader fetches playlists and renders them into a document.
type Loader struct {
	doc    *dom.Document
	broker TokenSource
	api    API
	nav    Navigator
	logger *log.Logger
}

// New creates a loader.
func New(opts Options) *Loader {
	if opts.Document == nil {
		opts.Document = dom.NewDocument()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Navigator == nil {
		opts.Navigator = shared.NewBrowserNavigator(opts.Logger)
	}
	return &Loader{
		doc:    opts.Document,
		broker: opts.Broker,
		api:    opts.API,
		nav:    opts.Navigator,
		logger: opts.Logger,
	}
}

// Bind wires the login action to the broker's login route.
func (l *Loader) Bind() {
	l.doc.On(dom.Click, "#login-btn", func(*dom.Event) { l.nav.Navigate(l.broker.LoginURL()) })
}

// Result is the outcome of [Loader.Fetch]. Apply it to the page with [Loader.Apply].
type Result struct {
	Playlists []Playlist
	Err       error
	// Message is the error banner text, empty when there is nothing to show.
	Message string
	// NeedsLogin is set when no token could be obtained.
	NeedsLogin bool
}

// Load fetches the user's playlists and renders them. The returned playlists are also what was rendered.
func (l *Loader) Load(ctx context.Context) ([]Playlist, error) {
	l.Begin()
	res := l.Fetch(ctx)
	l.Apply(res)
	return res.Playlists, res.Err
}

// Begin shows the loading indicator and clears any previous error.
func (l *Loader) Begin() {
	show(l.doc.Query(".loading"))
	hide(l.doc.Query(".error"))
}

// Fetch performs the requests of a load without touching the document, so it may run off the page's event loop.
// A 401 from the provider still sends the user to login.
func (l *Loader) Fetch(ctx context.Context) Result {
	token, err := l.broker.AccessToken(ctx)
	if err != nil {
		return Result{Err: err, Message: fmt.Sprintf("Error: %s. Please try again later", err), NeedsLogin: true}
	}

	me, err := l.api.CurrentUser(ctx, token)
	if err != nil {
		l.unauthorized(err)
		return Result{Err: err, Message: "Error fetching data: " + err.Error()}
	}
	l.logger.Debug("current user", "id", me.ID)

	return l.fetchPlaylists(ctx, token, me.ID)
}

// Apply renders res into the document and hides the loading indicator.
func (l *Loader) Apply(res Result) {
	defer hide(l.doc.Query(".loading"))

	if res.NeedsLogin {
		show(l.doc.Query("#login-btn"))
	} else {
		hide(l.doc.Query("#login-btn"))
	}

	if res.Message != "" {
		l.showError(res.Message)
	}
	if res.Err != nil {
		return
	}
	l.render(l.doc.Query(".playlist-container"), res.Playlists)
}

func (l *Loader) fetchPlaylists(ctx context.Context, token, userID string) Result {
	page, err := l.api.UserPlaylists(ctx, token, userID)
	if err != nil {
		if services.IsNotFound(err) {
			return Result{Playlists: []Playlist{}}
		}
		l.unauthorized(err)
		return Result{Err: err, Message: "Error fetching playlists: " + err.Error()}
	}

	items := page.Items
	if page.Total > PlaylistLimit && len(items) > PlaylistLimit {
		items = items[:PlaylistLimit]
	}

	playlists := make([]Playlist, 0, len(items))
	for _, p := range items {
		playlists = append(playlists, Playlist{ID: p.ID, Name: p.Name, Tracks: l.loadTracks(ctx, token, p)})
	}
	return Result{Playlists: playlists}
}

// loadTracks fetches a playlist's first tracks. Failures are logged and yield no tracks.
func (l *Loader) loadTracks(ctx context.Context, token string, p services.SpotifySimplePlaylist) []Track {
	raw, err := l.api.PlaylistTracks(ctx, token, p.ID, 0, TrackLimit)
	if err != nil {
		l.logger.Error("error fetching tracks", "playlist", p.Name, "error", err)
		return []Track{}
	}

	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		track := Track{ID: t.ID, Name: t.Name, Cover: t.Cover(), Preview: t.Preview()}
		if names := t.ArtistNames(); len(names) > 0 {
			track.Artist = names[0]
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// unauthorized sends the user to login when err is a provider 401.
func (l *Loader) unauthorized(err error) {
	if errors.Is(err, services.ErrUnauthorized) {
		l.nav.Navigate(l.broker.LoginURL())
	}
}

func (l *Loader) showError(msg string) {
	l.logger.Error(msg)
	if banner := l.doc.Query(".error"); banner != nil {
		banner.SetText(msg)
		banner.Show()
	}
}

func show(n *dom.Node) {
	if n != nil {
		n.Show()
	}
}

func hide(n *dom.Node) {
	if n != nil {
		n.Hide()
	}
}
