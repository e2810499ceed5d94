package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// FS returns an http.FileSystem rooted at the embedded static directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only fails for an invalid path literal.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Index returns the embedded upload page.
func Index() ([]byte, error) {
	return staticFS.ReadFile("static/index.html")
}
