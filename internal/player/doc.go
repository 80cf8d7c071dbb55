// Package player implements the playback controller that drives the player page.
//
// The [Controller] owns a [dom.Document] and reacts to its events: selecting a track plays it and pauses every
// other one, previous and next step through the enclosing playlist, album list or soundtrack dialog (wrapping
// at both ends), the progress bar seeks on click or drag, and the volume slider, theme and recently played list
// are persisted through a [storage.Store].
package player
