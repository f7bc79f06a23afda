package handlers

import (
	"io/fs"
	"net/http"
)

type StaticHandler struct {
	fsys  fs.FS
	files http.Handler
}

// NewStaticHandler serves the browser client from fsys, which must contain
// index.html at its root.
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{
		fsys:  fsys,
		files: http.StripPrefix("/static/", http.FileServer(http.FS(fsys))),
	}
}

func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.fsys, "index.html")
}

func (h *StaticHandler) Assets(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
