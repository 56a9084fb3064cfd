package host

import "strings"

// ParentOf returns path up to, not including, its last '/' that is not the
// final character. It returns "/" when there is no meaningful parent.
func ParentOf(path string) string {
	last := strings.LastIndexByte(path, '/')
	if last >= 0 && last == len(path)-1 {
		last = strings.LastIndexByte(path[:last], '/')
	}
	if last <= 0 {
		return "/"
	}
	return path[:last]
}

// ResolveRelative joins rel onto base by concatenation. There is no handling
// of "." or ".." segments: an empty rel yields base, an empty base yields rel,
// a rel starting with '/' is appended as-is and anything else is appended
// after a '/'.
func ResolveRelative(base, rel string) string {
	switch {
	case rel == "":
		return base
	case base == "":
		return rel
	case strings.HasPrefix(rel, "/"):
		return base + rel
	default:
		return base + "/" + rel
	}
}

// DirectoryPrefix normalises a directory path to start and end with '/'.
func DirectoryPrefix(dir string) string {
	if !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// underDirectory reports whether any of paths starts with the normalised
// directory prefix.
func underDirectory(paths []string, dir string) bool {
	prefix := DirectoryPrefix(dir)
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
