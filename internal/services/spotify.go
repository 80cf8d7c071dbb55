// Spotify Web API client used by the player's data fetch path
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	SpotifyBaseURL = "https://api.spotify.com/v1"

	DefaultRedirectURI = "http://localhost:3000/callback"
)

// Scopes requested by the broker's login redirect.
var Scopes = []string{
	spotifyauth.ScopeImageUpload,
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeStreaming,
	"app-remote-control",
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// ErrUnauthorized is returned when the provider rejects the bearer token (HTTP 401).
var ErrUnauthorized = fmt.Errorf("%w: unauthorized, please login again", shared.ErrNotAuthenticated)

// APIError is a non-success response from the provider other than 401.
type APIError struct {
	StatusCode int
	StatusText string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error fetching data: %d %s", e.StatusCode, e.StatusText)
}

// Unwrap lets callers match [shared.ErrAPIRequest] with errors.Is.
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// IsNotFound reports whether err is an [APIError] with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// NewOAuthConfig builds the authorization-code [oauth2.Config] for the Spotify accounts service.
func NewOAuthConfig(creds shared.SpotifyConfig) (*oauth2.Config, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}, nil
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	PreviewURL *string         `json:"preview_url"`
}

// ArtistNames returns the track's artist names in credited order.
func (t SpotifyTrack) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// Cover returns the first (largest) album image URL, or "".
func (t SpotifyTrack) Cover() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}

// Preview returns the preview clip URL, or "" when the provider offers none.
func (t SpotifyTrack) Preview() string {
	if t.PreviewURL == nil {
		return ""
	}
	return *t.PreviewURL
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed or local items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks is one page of a playlist's items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyClient calls the Spotify Web API with a caller-supplied bearer token.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSpotifyClient creates a client for baseURL (defaulting to [SpotifyBaseURL]) using httpClient (defaulting to
// [http.DefaultClient]).
func NewSpotifyClient(baseURL string, httpClient *http.Client, logger *log.Logger) *SpotifyClient {
	if baseURL == "" {
		baseURL = SpotifyBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Fetch performs an authenticated GET of endpoint (relative to the API base, e.g. "me") and decodes the JSON
// response into result.
//
// A 401 returns [ErrUnauthorized] without reading the body. Any other non-2xx status returns an [*APIError].
func (s *SpotifyClient) Fetch(ctx context.Context, endpoint, token string, result any) error {
	apiURL := s.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("api response", "endpoint", endpoint, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, StatusText: statusText(resp), Endpoint: endpoint}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusText returns the reason phrase of resp ("Not Found" for "404 Not Found").
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// CurrentUser retrieves the profile of the token's owner.
func (s *SpotifyClient) CurrentUser(ctx context.Context, token string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.Fetch(ctx, "me", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves the first page of a user's playlists.
func (s *SpotifyClient) UserPlaylists(ctx context.Context, token, userID string) (*SpotifyPaginatedPlaylists, error) {
	var page SpotifyPaginatedPlaylists
	endpoint := fmt.Sprintf("users/%s/playlists", url.PathEscape(userID))
	if err := s.Fetch(ctx, endpoint, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks retrieves one window of a playlist's tracks, dropping items without a track.
func (s *SpotifyClient) PlaylistTracks(ctx context.Context, token, playlistID string, offset, limit int) ([]SpotifyTrack, error) {
	var page SpotifyPaginatedPlaylistTracks
	endpoint := fmt.Sprintf("playlists/%s/tracks?offset=%d&limit=%d", url.PathEscape(playlistID), offset, limit)
	if err := s.Fetch(ctx, endpoint, token, &page); err != nil {
		return nil, err
	}

	tracks := make([]SpotifyTrack, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track)
	}
	return tracks, nil
}
