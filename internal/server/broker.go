package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// DefaultRefreshInterval is used when the provider does not report an expiry.
	DefaultRefreshInterval = 30 * time.Minute

	// stateTTL bounds how long a /login state value is accepted by /callback.
	stateTTL = 10 * time.Minute
)

// BrokerOpts configures a [Broker].
type BrokerOpts struct {
	OAuth      *oauth2.Config
	Logger     *log.Logger
	HTTPClient *http.Client
	// RefreshEvery overrides the refresh period. When zero the period is half of the token's lifetime.
	RefreshEvery time.Duration
}

// Broker holds the single current access token and keeps it fresh.
//
// The token lives in process memory only. Each accepted token starts one refresh loop; accepting another cancels
// the previous loop.
type Broker struct {
	oauth        *oauth2.Config
	logger       *log.Logger
	client       *http.Client
	refreshEvery time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	token  *oauth2.Token
	states map[string]time.Time
	cancel context.CancelFunc

	base     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup
}

// NewBroker creates a [Broker] with no token.
func NewBroker(opts BrokerOpts) *Broker {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	base, shutdown := context.WithCancel(context.Background())
	return &Broker{
		oauth:        opts.OAuth,
		logger:       opts.Logger,
		client:       opts.HTTPClient,
		refreshEvery: opts.RefreshEvery,
		now:          time.Now,
		states:       make(map[string]time.Time),
		base:         base,
		shutdown:     shutdown,
	}
}

// AccessToken returns the current access token, if any.
func (b *Broker) AccessToken() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token == nil || b.token.AccessToken == "" {
		return "", false
	}
	return b.token.AccessToken, true
}

// Close stops the refresh loop and waits for it to exit.
func (b *Broker) Close() {
	b.shutdown()
	b.wg.Wait()
}

// RefreshInterval is half of the token's remaining lifetime, or [DefaultRefreshInterval] when it has none.
func RefreshInterval(tok *oauth2.Token, now time.Time) time.Duration {
	if tok == nil || tok.Expiry.IsZero() {
		return DefaultRefreshInterval
	}
	if d := tok.Expiry.Sub(now) / 2; d > 0 {
		return d
	}
	return DefaultRefreshInterval
}

// accept stores tok as the current token and replaces any running refresh loop.
func (b *Broker) accept(tok *oauth2.Token) {
	every := b.refreshEvery
	if every <= 0 {
		every = RefreshInterval(tok, b.now())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.token = tok

	if tok.RefreshToken == "" {
		b.logger.Warn("token has no refresh token, it will not be refreshed")
		return
	}

	ctx, cancel := context.WithCancel(b.base)
	b.cancel = cancel
	b.wg.Add(1)
	go b.refreshLoop(ctx, tok.RefreshToken, every)

	b.logger.Info("token accepted", "expiry", tok.Expiry, "refresh_every", every)
}

// refreshLoop exchanges the refresh token on every tick. Failures are logged and the stale token is kept.
func (b *Broker) refreshLoop(ctx context.Context, refreshToken string, every time.Duration) {
	defer b.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			src := b.oauth.TokenSource(b.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
			tok, err := src.Token()
			if err != nil {
				b.logger.Error("token refresh failed", "error", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err))
				continue
			}
			if tok.RefreshToken != "" {
				refreshToken = tok.RefreshToken
			}

			b.mu.Lock()
			if ctx.Err() == nil {
				b.token = tok
			}
			b.mu.Unlock()

			b.logger.Info("token refreshed", "expiry", tok.Expiry)
		}
	}
}

// rememberState records a state value issued by /login, dropping expired ones.
func (b *Broker) rememberState(state string) {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for s, issued := range b.states {
		if now.Sub(issued) > stateTTL {
			delete(b.states, s)
		}
	}
	b.states[state] = now
}

// consumeState reports whether state was issued and is still fresh. A state is accepted once.
func (b *Broker) consumeState(state string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	issued, ok := b.states[state]
	if !ok {
		return false
	}
	delete(b.states, state)
	return b.now().Sub(issued) <= stateTTL
}

func (b *Broker) clientContext(ctx context.Context) context.Context {
	if b.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, b.client)
}

// TokenHandler serves the current token as JSON.
type TokenHandler struct {
	broker *Broker
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{"GET /get-token"}
}

// ServeHTTP answers 200 with the token, or 401 before any login has completed.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := h.broker.AccessToken()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
