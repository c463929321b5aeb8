// Package assets holds the files the dev server hands to browsers.
package assets

import (
	_ "embed"
)

//go:embed reload.js
var ReloadJS []byte

//go:embed docs.html
var DocsHTML []byte

// ReloadScriptTag wraps the reload client in a script element ready to be
// placed before </body>.
func ReloadScriptTag() []byte {
	tag := make([]byte, 0, len(ReloadJS)+len("<script></script>"))
	tag = append(tag, "<script>"...)
	tag = append(tag, ReloadJS...)
	tag = append(tag, "</script>"...)
	return tag
}
