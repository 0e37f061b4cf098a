// Package levels bundles the level pack shipped with the game.
package levels

import (
	"embed"
	"io/fs"
)

//go:embed level_*.json
var files embed.FS

// FS exposes the bundled level files at its root.
func FS() fs.FS { return files }
