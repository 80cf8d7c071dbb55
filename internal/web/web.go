// Package web holds the player page: the markup served by the broker and parsed into a document by the
// terminal front-ends.
//
// # Page Structure
//
// The page is a single HTML entry point with a stylesheet. The controller and loader address it through these
// hooks:
//
//   - .loading, .error, #login-btn : data fetch status
//   - .playlist-container : rebuilt with one .playlist per provider playlist
//   - .soundtrack-item, .playlist-dialog, .view-more : soundtrack grid and its dialogs (matched by index)
//   - .album-list .album .audio-container audio : album previews
//   - .player : cover, title, transport, progress bar, volume
//   - .now-playing-notification, .recent-tracks : feedback and history
//   - .enableMenu, .dynamicToggleMenu, .icons[data-theme] : theme menu
package web

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/desertthunder/soundcheck/internal/dom"
)

//go:embed static
var staticFiles embed.FS

// Assets is the page and its stylesheet.
var Assets = mustSub(staticFiles, "static")

// IndexFile is the page served at "/".
const IndexFile = "index.html"

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// ParsePage parses the embedded page into a fresh document.
func ParsePage() (*dom.Document, error) {
	f, err := Assets.Open(IndexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()
	return dom.Parse(f)
}
