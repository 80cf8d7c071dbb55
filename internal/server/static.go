package server

import (
	"io/fs"
	"net/http"

	"github.com/desertthunder/soundcheck/internal/web"
)

// StaticHandler serves the entry page and the embedded assets.
type StaticHandler struct {
	index http.Handler
	all   http.Handler
}

// NewStaticHandler serves files from fsys, defaulting to [web.Assets].
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	if fsys == nil {
		fsys = web.Assets
	}
	return &StaticHandler{
		index: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, fsys, web.IndexFile)
		}),
		all: http.FileServerFS(fsys),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *StaticHandler) Routes() []string {
	return []string{"GET /"}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		h.index.ServeHTTP(w, r)
		return
	}
	h.all.ServeHTTP(w, r)
}
