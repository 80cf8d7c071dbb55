// Package server provides the token broker: OAuth login and callback handling, the in-memory token with its
// refresh loop, and the HTTP plumbing that serves the player page.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally.
//
// # Endpoints
//
//   - GET /login : 302 to the provider's authorization page with a fresh state value
//   - GET /callback : exchanges the code, stores the token and starts the refresh loop
//   - GET /get-token : 200 {"access_token": ...} or 401 {"error": "Unauthorized"}
//   - GET / : the player page and its embedded assets
//
// # Token Lifecycle
//
// [Broker] keeps exactly one token. A successful callback replaces it and restarts the refresh loop, which ticks
// every half of the token's lifetime. Refresh failures are logged and the stale token keeps being served.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
