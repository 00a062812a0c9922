package analyzer

import (
	"path/filepath"
	"strings"
)

// Stem returns the base name of a path without its extension, used to derive
// deterministic artifact names from the source image.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
