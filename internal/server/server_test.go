package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/soundcheck/internal/services"
	"github.com/desertthunder/soundcheck/internal/shared"
	"golang.org/x/oauth2"
)

// tokenEndpoint fakes the provider's token URL.
type tokenEndpoint struct {
	refreshes   atomic.Int32
	failRefresh atomic.Bool
	mu          sync.Mutex
	issued      map[string]string
	refreshed   []string
}

func (e *tokenEndpoint) seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.refreshed...)
}

func (e *tokenEndpoint) resetSeen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshed = nil
}

func (e *tokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.Form.Get("grant_type") {
	case "authorization_code":
		code := r.Form.Get("code")
		e.mu.Lock()
		access, ok := e.issued[code]
		e.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","refresh_token":"refresh-%s","expires_in":3600}`, access, code)
	case "refresh_token":
		e.mu.Lock()
		e.refreshed = append(e.refreshed, r.Form.Get("refresh_token"))
		e.mu.Unlock()
		if e.failRefresh.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"server_error"}`))
			return
		}
		n := e.refreshes.Add(1)
		fmt.Fprintf(w, `{"access_token":"refreshed-%d","token_type":"Bearer","expires_in":3600}`, n)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

type brokerFixture struct {
	broker   *Broker
	router   *BasicRouter
	endpoint *tokenEndpoint
}

func newBrokerFixture(t *testing.T, refreshEvery time.Duration) *brokerFixture {
	t.Helper()

	endpoint := &tokenEndpoint{issued: map[string]string{"good": "access-1", "other": "access-2"}}
	srv := httptest.NewServer(endpoint)
	t.Cleanup(srv.Close)

	cfg, err := services.NewOAuthConfig(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("failed to build oauth config: %v", err)
	}
	cfg.Endpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.example.com/authorize",
		TokenURL:  srv.URL + "/api/token",
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	logger := shared.NewLogger(io.Discard)
	broker := NewBroker(BrokerOpts{OAuth: cfg, Logger: logger, HTTPClient: srv.Client(), RefreshEvery: refreshEvery})
	t.Cleanup(broker.Close)

	return &brokerFixture{broker: broker, router: NewRouter(broker, logger), endpoint: endpoint}
}

func (f *brokerFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// login performs GET /login and returns the state value from the redirect.
func (f *brokerFixture) login(t *testing.T) string {
	t.Helper()
	rec := f.get(t, "/login")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid redirect: %v", err)
	}
	return loc.Query().Get("state")
}

func (f *brokerFixture) connect(t *testing.T, code string) {
	t.Helper()
	state := f.login(t)
	rec := f.get(t, "/callback?code="+code+"&state="+state)
	if body := rec.Body.String(); body != "Connected!, Now You can Close the Window" {
		t.Fatalf("unexpected callback response %q", body)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTokenEndpoint(t *testing.T) {
	t.Run("401 before login", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		rec := f.get(t, "/get-token")

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body["error"] != "Unauthorized" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("200 after login", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		f.connect(t, "good")

		rec := f.get(t, "/get-token")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var body map[string]string
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["access_token"] != "access-1" {
			t.Errorf("unexpected body %v", body)
		}
	})
}

func TestLogin(t *testing.T) {
	f := newBrokerFixture(t, time.Hour)
	rec := f.get(t, "/login")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	loc, _ := url.Parse(rec.Header().Get("Location"))
	q := loc.Query()
	if loc.Host != "accounts.example.com" {
		t.Errorf("unexpected redirect host %s", loc.Host)
	}
	if q.Get("response_type") != "code" || q.Get("client_id") != "id" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Get("redirect_uri") != services.DefaultRedirectURI {
		t.Errorf("unexpected redirect_uri %s", q.Get("redirect_uri"))
	}
	if q.Get("state") == "" {
		t.Error("expected a state value")
	}

	scopes := strings.Fields(q.Get("scope"))
	if len(scopes) != 12 {
		t.Errorf("expected 12 scopes, got %d: %v", len(scopes), scopes)
	}

	t.Run("states are unique", func(t *testing.T) {
		if f.login(t) == f.login(t) {
			t.Error("expected distinct state values")
		}
	})
}

func TestCallback(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		state := f.login(t)
		rec := f.get(t, "/callback?error=access_denied&state="+state)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "Callback error access_denied" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
		if _, ok := f.broker.AccessToken(); ok {
			t.Error("expected no token")
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		rec := f.get(t, "/callback?code=good&state=forged")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if _, ok := f.broker.AccessToken(); ok {
			t.Error("expected no token")
		}
	})

	t.Run("state is single use", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		state := f.login(t)
		f.get(t, "/callback?code=good&state="+state)

		rec := f.get(t, "/callback?code=good&state="+state)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replayed state to be rejected, got %d", rec.Code)
		}
	})

	t.Run("expired state", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		state := f.login(t)
		f.broker.now = func() time.Time { return time.Now().Add(stateTTL + time.Minute) }

		rec := f.get(t, "/callback?code=good&state="+state)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected expired state to be rejected, got %d", rec.Code)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		state := f.login(t)
		rec := f.get(t, "/callback?code=unknown&state="+state)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Body.String(), "Error getting token: ") {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
		if _, ok := f.broker.AccessToken(); ok {
			t.Error("expected no token")
		}
	})

	t.Run("success", func(t *testing.T) {
		f := newBrokerFixture(t, time.Hour)
		f.connect(t, "good")

		token, ok := f.broker.AccessToken()
		if !ok || token != "access-1" {
			t.Errorf("expected access-1, got %q", token)
		}
	})
}

func TestRefreshLoop(t *testing.T) {
	t.Run("replaces the token on each tick", func(t *testing.T) {
		f := newBrokerFixture(t, 10*time.Millisecond)
		f.connect(t, "good")

		eventually(t, func() bool {
			token, _ := f.broker.AccessToken()
			return strings.HasPrefix(token, "refreshed-")
		})
		eventually(t, func() bool { return f.endpoint.refreshes.Load() >= 2 })
	})

	t.Run("keeps the stale token on failure", func(t *testing.T) {
		f := newBrokerFixture(t, 10*time.Millisecond)
		f.endpoint.failRefresh.Store(true)
		f.connect(t, "good")

		time.Sleep(50 * time.Millisecond)
		if token, ok := f.broker.AccessToken(); !ok || token != "access-1" {
			t.Errorf("expected stale token access-1, got %q", token)
		}

		f.endpoint.failRefresh.Store(false)
		eventually(t, func() bool {
			token, _ := f.broker.AccessToken()
			return strings.HasPrefix(token, "refreshed-")
		})
	})

	t.Run("new callback replaces the loop", func(t *testing.T) {
		f := newBrokerFixture(t, 10*time.Millisecond)
		f.connect(t, "good")
		eventually(t, func() bool { return f.endpoint.refreshes.Load() >= 1 })

		f.connect(t, "other")
		time.Sleep(20 * time.Millisecond)
		f.endpoint.resetSeen()

		eventually(t, func() bool { return len(f.endpoint.seen()) >= 3 })
		for _, rt := range f.endpoint.seen() {
			if rt != "refresh-other" {
				t.Fatalf("expected only the latest loop to refresh, saw %q", rt)
			}
		}
	})

	t.Run("Close stops the loop", func(t *testing.T) {
		f := newBrokerFixture(t, 5*time.Millisecond)
		f.connect(t, "good")
		f.broker.Close()

		n := f.endpoint.refreshes.Load()
		time.Sleep(30 * time.Millisecond)
		if f.endpoint.refreshes.Load() != n {
			t.Error("expected no refreshes after Close")
		}
	})
}

func TestRefreshInterval(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tc := []struct {
		name string
		tok  *oauth2.Token
		want time.Duration
	}{
		{name: "half of lifetime", tok: &oauth2.Token{Expiry: now.Add(time.Hour)}, want: 30 * time.Minute},
		{name: "no expiry", tok: &oauth2.Token{}, want: DefaultRefreshInterval},
		{name: "already expired", tok: &oauth2.Token{Expiry: now.Add(-time.Minute)}, want: DefaultRefreshInterval},
		{name: "nil token", tok: nil, want: DefaultRefreshInterval},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := RefreshInterval(tt.tok, now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	f := newBrokerFixture(t, time.Hour)

	t.Run("index", func(t *testing.T) {
		rec := f.get(t, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `class="playlist-container"`) {
			t.Error("expected the player page")
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("unexpected content type %q", ct)
		}
	})

	t.Run("stylesheet", func(t *testing.T) {
		rec := f.get(t, "/style.css")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing asset", func(t *testing.T) {
		if rec := f.get(t, "/missing.js"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
		if got := router.Patterns(); len(got) != 1 || got[0] != "GET /ping" {
			t.Errorf("unexpected patterns %v", got)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("request logger records status", func(t *testing.T) {
		var buf strings.Builder
		router := NewBasicRouter()
		router.Use(RequestLogger(shared.NewLogger(&buf)))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		out := buf.String()
		if !strings.Contains(out, "/teapot") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %q", out)
		}
	})
}

func TestServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}), shared.NewLogger(io.Discard))
	}()

	var resp *http.Response
	eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String())
		return err == nil
	})
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
