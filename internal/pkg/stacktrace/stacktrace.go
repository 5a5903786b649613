// Package stacktrace trims runtime stacks down to frames from this module.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/...go:line" locations found in a
// debug.Stack() dump, in call order.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)

		loc, _, _ := strings.Cut(line, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.Index(loc, marker)
		if idx == -1 {
			continue
		}

		paths = append(paths, loc[idx+1:])
	}

	return paths
}
