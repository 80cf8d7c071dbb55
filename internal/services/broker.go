package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/soundcheck/internal/shared"
)

// DefaultBrokerURL is where the token broker listens by default.
const DefaultBrokerURL = "http://localhost:3000"

// TokenResponse is the body of the broker's /get-token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BrokerClient talks to the token broker on behalf of the player.
type BrokerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBrokerClient creates a client for the broker at baseURL (defaulting to [DefaultBrokerURL]).
func NewBrokerClient(baseURL string, httpClient *http.Client) *BrokerClient {
	if baseURL == "" {
		baseURL = DefaultBrokerURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BrokerClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// LoginURL is the broker route that starts the OAuth flow.
func (b *BrokerClient) LoginURL() string {
	return b.baseURL + "/login"
}

// AccessToken asks the broker for its current token.
//
// Both transport failures and an error payload (the broker answers 401 before any login) are returned as errors
// wrapping [shared.ErrTokenUnavailable].
func (b *BrokerClient) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/get-token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	var body TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: failed to decode broker response: %v", shared.ErrTokenUnavailable, err)
	}

	if body.Error != "" {
		return "", fmt.Errorf("%w: error fetching data: %s", shared.ErrTokenUnavailable, body.Error)
	}

	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty token (status %d)", shared.ErrTokenUnavailable, resp.StatusCode)
	}

	return body.AccessToken, nil
}
