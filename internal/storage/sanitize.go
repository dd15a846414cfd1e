package storage

import (
	"path"
	"regexp"
	"strings"
)

const maxNameLen = 200

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Sanitize reduces an uploaded file name to a single safe path segment.
// Separators and "." / ".." segments are dropped, remaining segments are
// joined with "_", and characters outside [a-zA-Z0-9._-] become "_".
// It returns "" when nothing usable is left.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	var parts []string
	for _, seg := range strings.Split(name, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	out := unsafeNameRe.ReplaceAllString(strings.Join(parts, "_"), "_")
	out = strings.TrimLeft(out, ".")
	if strings.Trim(out, "_") == "" {
		return ""
	}
	if len(out) > maxNameLen {
		ext := path.Ext(out)
		if len(ext) > 16 {
			ext = ""
		}
		out = out[:maxNameLen-len(ext)] + ext
	}
	return out
}
