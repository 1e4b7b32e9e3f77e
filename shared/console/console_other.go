//go:build !windows

package console

import (
	"os"
	"strings"
)

// HasBlueBackground reports whether the terminal background is blue, read
// from the rxvt-style COLORFGBG convention ("<fg>;<bg>").
func HasBlueBackground() bool {
	raw := strings.TrimSpace(os.Getenv("COLORFGBG"))
	if raw == "" {
		return false
	}

	fields := strings.Split(raw, ";")
	bg := strings.TrimSpace(fields[len(fields)-1])

	// 4 is ANSI blue, 12 bright blue.
	return bg == "4" || bg == "12"
}
