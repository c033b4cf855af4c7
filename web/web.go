// Package web embeds the page templates into the binary.
package web

import "embed"

// Templates holds templates/*.html. Every page is parsed together with
// layout.html and fills its "content" block.
//
//go:embed templates/*.html
var Templates embed.FS
