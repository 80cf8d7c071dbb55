package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/services"
	"github.com/desertthunder/soundcheck/internal/shared"
	tu "github.com/desertthunder/soundcheck/internal/testing"
	"github.com/desertthunder/soundcheck/internal/web"
)

type stubBroker struct {
	token string
	err   error
}

func (s stubBroker) AccessToken(context.Context) (string, error) { return s.token, s.err }
func (s stubBroker) LoginURL() string                            { return "http://localhost:3000/login" }

// fakeSpotify serves canned provider responses and records the requested paths.
type fakeSpotify struct {
	mu        sync.Mutex
	paths     []string
	playlists int
	status    map[string]int
}

func (f *fakeSpotify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.RequestURI())
	f.mu.Unlock()

	if code, ok := f.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		return
	}

	switch {
	case r.URL.Path == "/me":
		fmt.Fprint(w, `{"id":"u1","display_name":"Ada"}`)
	case r.URL.Path == "/users/u1/playlists":
		items := make([]string, f.playlists)
		for i := range items {
			items[i] = fmt.Sprintf(`{"id":"p%d","name":"Playlist %d"}`, i, i)
		}
		fmt.Fprintf(w, `{"total":%d,"items":[%s]}`, f.playlists, strings.Join(items, ","))
	case strings.HasPrefix(r.URL.Path, "/playlists/"):
		fmt.Fprint(w, `{"items":[
			{"track":{"id":"t1","name":"Song","artists":[{"name":"Artist"},{"name":"Other"}],
			  "album":{"images":[{"url":"c.jpg"}]},"preview_url":"s.mp3"}},
			{"track":null},
			{"track":{"id":"t2","name":"Quiet","artists":[{"name":"Someone"}],"preview_url":null}}
		]}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSpotify) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

type fixture struct {
	loader *Loader
	doc    *dom.Document
	nav    *tu.RecordingNavigator
	api    *fakeSpotify
}

func newFixture(t *testing.T, broker TokenSource, api *fakeSpotify) *fixture {
	t.Helper()
	doc, err := web.ParsePage()
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := shared.NewLogger(io.Discard)
	nav := &tu.RecordingNavigator{}
	loader := New(Options{
		Document:  doc,
		Broker:    broker,
		API:       services.NewSpotifyClient(srv.URL, srv.Client(), logger),
		Navigator: nav,
		Logger:    logger,
	})
	loader.Bind()
	return &fixture{loader: loader, doc: doc, nav: nav, api: api}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("renders playlists", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 2})
		playlists, err := f.loader.Load(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}

		rendered := f.doc.QueryAll(".playlist-container .playlist")
		if len(rendered) != 2 {
			t.Fatalf("expected 2 rendered playlists, got %d", len(rendered))
		}
		if got := rendered[0].Query("h2").TextContent(); got != "Playlist 0" {
			t.Errorf("unexpected heading %q", got)
		}

		tracks := rendered[0].QueryAll("ul.tracks-list li.track")
		if len(tracks) != 2 {
			t.Fatalf("expected null tracks to be filtered, got %d", len(tracks))
		}
		if got := tracks[0].TextContent(); got != "Song - Artist" {
			t.Errorf("unexpected label %q", got)
		}

		if !tracks[0].HasClass("playlist-item") || tracks[1].HasClass("playlist-item") {
			t.Error("expected only tracks with previews to be playable")
		}
		audio := tracks[0].Query("audio")
		if audio.Attr("src") != "s.mp3" || audio.Data("title") != "Song" || audio.Data("artist") != "Artist" || audio.Data("cover") != "c.jpg" {
			t.Errorf("unexpected audio attributes src=%q title=%q", audio.Attr("src"), audio.Data("title"))
		}

		if f.doc.Query(".loading").Visible() {
			t.Error("expected loading indicator to be hidden")
		}
		if f.doc.Query(".error").Visible() {
			t.Error("expected no error banner")
		}
	})

	t.Run("request sequence", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 2})
		f.loader.Load(ctx)

		want := []string{
			"/me",
			"/users/u1/playlists",
			"/playlists/p0/tracks?offset=0&limit=4",
			"/playlists/p1/tracks?offset=0&limit=4",
		}
		if got := f.api.requested(); strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("unexpected requests:\n got %v\nwant %v", got, want)
		}
	})

	t.Run("truncates to six playlists", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 9})
		playlists, _ := f.loader.Load(ctx)

		if len(playlists) != PlaylistLimit {
			t.Errorf("expected %d playlists, got %d", PlaylistLimit, len(playlists))
		}
		if n := len(f.doc.QueryAll(".playlist-container .playlist")); n != PlaylistLimit {
			t.Errorf("expected %d rendered, got %d", PlaylistLimit, n)
		}
	})

	t.Run("rebuilds on reload", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 3})
		f.loader.Load(ctx)
		f.loader.Load(ctx)
		if n := len(f.doc.QueryAll(".playlist-container .playlist")); n != 3 {
			t.Errorf("expected container to be rebuilt, got %d playlists", n)
		}
	})

	t.Run("no playlists", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{})
		f.loader.Load(ctx)
		if got := f.doc.Query(".playlist-container").TextContent(); got != EmptyMessage {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("404 renders the empty state", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{status: map[string]int{"/users/u1/playlists": 404}})
		_, err := f.loader.Load(ctx)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if got := f.doc.Query(".playlist-container").TextContent(); got != EmptyMessage {
			t.Errorf("unexpected content %q", got)
		}
		if f.doc.Query(".error").Visible() {
			t.Error("expected no error banner")
		}
	})

	t.Run("other errors show the banner with status", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{status: map[string]int{"/users/u1/playlists": 500}})
		_, err := f.loader.Load(ctx)
		if err == nil {
			t.Fatal("expected error")
		}

		banner := f.doc.Query(".error")
		if !banner.Visible() {
			t.Fatal("expected error banner")
		}
		if got := banner.TextContent(); !strings.HasPrefix(got, "Error fetching playlists: ") || !strings.Contains(got, "500") {
			t.Errorf("unexpected banner %q", got)
		}
	})

	t.Run("failed track fetch yields an empty list", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 2, status: map[string]int{"/playlists/p0/tracks": 500}})
		playlists, err := f.loader.Load(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists[0].Tracks) != 0 || len(playlists[1].Tracks) != 2 {
			t.Errorf("unexpected tracks %+v", playlists)
		}
	})

	t.Run("401 navigates to login", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "expired"}, &fakeSpotify{status: map[string]int{"/me": 401}})
		_, err := f.loader.Load(ctx)
		if !errors.Is(err, services.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if got := f.nav.Visited(); len(got) != 1 || got[0] != "http://localhost:3000/login" {
			t.Errorf("expected navigation to login, got %v", got)
		}
		if n := len(f.api.requested()); n != 1 {
			t.Errorf("expected loading to stop after 401, got %d requests", n)
		}
	})

	t.Run("token failure", func(t *testing.T) {
		f := newFixture(t, stubBroker{err: errors.New("error fetching data: Unauthorized")}, &fakeSpotify{})
		_, err := f.loader.Load(ctx)
		if err == nil {
			t.Fatal("expected error")
		}

		banner := f.doc.Query(".error")
		if got := banner.TextContent(); got != "Error: error fetching data: Unauthorized. Please try again later" {
			t.Errorf("unexpected banner %q", got)
		}
		if !f.doc.Query("#login-btn").Visible() {
			t.Error("expected login action to be revealed")
		}
		if f.doc.Query(".loading").Visible() {
			t.Error("expected loading indicator to be hidden")
		}
		if len(f.api.requested()) != 0 {
			t.Error("expected no provider requests")
		}
	})

	t.Run("fetch leaves the page alone until applied", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{playlists: 1})
		f.loader.Begin()
		res := f.loader.Fetch(ctx)

		if n := len(f.doc.QueryAll(".playlist")); n != 0 {
			t.Fatalf("expected nothing rendered before apply, got %d", n)
		}
		if !f.doc.Query(".loading").Visible() {
			t.Error("expected loading indicator while fetching")
		}

		f.loader.Apply(res)
		if n := len(f.doc.QueryAll(".playlist")); n != 1 {
			t.Errorf("expected 1 rendered playlist, got %d", n)
		}
		if f.doc.Query(".loading").Visible() {
			t.Error("expected loading indicator to be hidden")
		}
	})

	t.Run("login button", func(t *testing.T) {
		f := newFixture(t, stubBroker{token: "tok"}, &fakeSpotify{})
		f.doc.Dispatch(&dom.Event{Type: dom.Click, Target: f.doc.Query("#login-btn")})
		if got := f.nav.Visited(); len(got) != 1 {
			t.Errorf("expected one navigation, got %v", got)
		}
	})
}

func TestTrackLabel(t *testing.T) {
	if got := (Track{Name: "Song", Artist: "A"}).Label(); got != "Song - A" {
		t.Errorf("unexpected label %q", got)
	}
	if got := (Track{Name: "Song"}).Label(); got != "Song" {
		t.Errorf("unexpected label %q", got)
	}
}
