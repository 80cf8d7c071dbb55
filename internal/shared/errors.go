package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenUnavailable = fmt.Errorf("access token unavailable")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
