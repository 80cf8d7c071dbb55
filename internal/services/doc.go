// Package services implements the HTTP clients used by the player.
//
// # Spotify
//
// [SpotifyClient] performs bearer-authenticated GETs against the Spotify Web API. It does not own a token; the
// caller passes the one obtained from the broker on every call. [NewOAuthConfig] builds the authorization-code
// configuration (endpoints and scopes) shared with the broker.
//
// # Broker
//
// [BrokerClient] reads the current access token from the token broker's /get-token endpoint.
//
// # Error Handling
//
//   - [ErrUnauthorized] : the provider answered 401; the body is not read
//   - [*APIError] : any other non-2xx answer, carrying status code and text ([IsNotFound] tests for 404)
//   - [shared.ErrTokenUnavailable] : the broker had no token or could not be reached
//   - [shared.ErrAPIRequest] : transport failure, also matched by [*APIError]
package services
