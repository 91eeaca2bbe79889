// Package web serves the embedded browser client for the todo service.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Handler returns a handler serving the browser client at the root path.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The static tree is embedded at build time; a missing subtree is a
		// packaging bug, not a runtime condition.
		panic(err)
	}
	return http.FileServerFS(sub)
}
