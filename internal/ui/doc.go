// Package ui implements the terminal player using bubbletea's Elm architecture.
//
// The [Model] hosts the player page as a [dom.Document] and drives it through the same handlers the page uses:
// keys become clicks and slider input on the page, a ticker advances the audio clocks, and the view is read back
// from the page (player bar, notification, recently played, error banner).
//
// Playlists are fetched off the event loop with [library.Loader.Fetch] and applied in Update. Deferred player work
// such as hiding the now playing notification is delivered to Update as a message, so the document is only ever
// touched from the event loop.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, space, n/p, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
