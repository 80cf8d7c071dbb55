package server

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/soundcheck/internal/shared"
)

// LoginHandler starts the authorization code flow.
type LoginHandler struct {
	broker *Broker
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{"GET /login"}
}

// ServeHTTP redirects to the provider's authorization page with a fresh state value.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateState()
	h.broker.rememberState(state)
	http.Redirect(w, r, h.broker.oauth.AuthCodeURL(state), http.StatusFound)
}

// CallbackHandler completes the authorization code flow.
type CallbackHandler struct {
	broker *Broker
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the provider redirect.
//
// A provider error and a failed exchange are reported to the browser as plain text with status 200; the user
// retries by visiting /login again. A state value that /login did not issue is rejected with 400.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	b := h.broker

	if errParam := query.Get("error"); errParam != "" {
		b.consumeState(query.Get("state"))
		b.logger.Error("callback error", "error", errParam)
		writeText(w, http.StatusOK, "Callback error "+errParam)
		return
	}

	if !b.consumeState(query.Get("state")) {
		b.logger.Warn("callback rejected", "error", shared.ErrInvalidState)
		writeText(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	token, err := b.oauth.Exchange(b.clientContext(r.Context()), query.Get("code"))
	if err != nil {
		b.logger.Error("token exchange failed", "error", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err))
		writeText(w, http.StatusOK, "Error getting token: "+err.Error())
		return
	}

	b.accept(token)
	writeText(w, http.StatusOK, "Connected!, Now You can Close the Window")
}
