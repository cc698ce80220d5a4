package views

import "embed"

// FS holds the page templates so the binary and the tests work from any directory.
//
//go:embed *.html layouts/*.html
var FS embed.FS
