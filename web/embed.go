// Package web carries the browser-facing assets compiled into the
// gameshelf binary: the page templates for the store, rent and library
// views, and the stylesheet. Embedding them keeps deployment down to a
// single file next to the database.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var assets embed.FS

// StaticFS returns the stylesheet and other static assets, rooted so
// the file server maps /static/x to static/x.
func StaticFS() fs.FS {
	return mustSub("static")
}

// TemplatesFS returns the page templates, rooted at templates/.
func TemplatesFS() fs.FS {
	return mustSub("templates")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		// Only reachable when the embed directive and dir disagree.
		panic("embedded assets: " + err.Error())
	}
	return sub
}
