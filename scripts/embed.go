// Package scripts embeds the bundled Risor prepare scripts.
package scripts

import "embed"

// FS holds prepare/*.risor. Pass it to grove.WithScriptsFS.
//
//go:embed prepare/*.risor
var FS embed.FS
