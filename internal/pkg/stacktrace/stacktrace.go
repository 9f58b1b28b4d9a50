package stacktrace

import "strings"

// InternalPaths extracts "internal/...go:line" frames from a debug.Stack dump,
// skipping runtime and third-party frames.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)

		_, rest, found := strings.Cut(line, "/internal/")
		if !found {
			continue
		}

		idx := strings.Index(rest, ".go:")
		if idx == -1 {
			continue
		}

		frame, _, _ := strings.Cut(rest, " ")
		paths = append(paths, "internal/"+frame)
	}

	return paths
}
