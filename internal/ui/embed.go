// Package ui embeds the browser front end. The UI is plain HTML, CSS, and
// JavaScript with no build step; the server ships it from the binary.
package ui

import "embed"

// Static embeds the browser UI assets.
//
//go:embed all:static
var Static embed.FS
