// Package site serves the embedded CV upload page and its script.
package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// Error constants
var (
	ErrServe = errors.New("upload page serve failed")
)

// Register attaches the upload page routes to r:
//
//	GET /                   -> index.html
//	GET /static/js/main.js  -> form handler script
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}

	root := NewRootHandler()
	r.HandleFunc("/", root.HandleRoot).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", noDirs(http.FileServer(FS())))).
		Methods(http.MethodGet, http.MethodHead)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / and serves the upload page.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	page, err := Index()
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// noDirs hides directory listings.
func noDirs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
