// Package web holds the HTML templates and static assets served by the UI.
// Both are embedded so the binary runs without a checkout alongside it.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the template tree rooted at layouts/, components/ and pages/.
func Templates() fs.FS {
	return sub(templates, "templates")
}

// Static returns the files served under /assets/.
func Static() fs.FS {
	return sub(static, "static")
}

func sub(fsys fs.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		// Only possible if dir is not a valid path, which is fixed at compile time.
		panic(err)
	}
	return s
}
