// Package dotpath implements dot-notation addressing over nested mappings.
//
// A dot-path is an ordered sequence of non-empty segment names joined by
// ".". The first segment names a root entry in a storage medium; the
// remaining segments address a location inside that entry's nested mapping.
// Nested mappings are map[string]any trees whose leaves are scalars or
// []any values; arrays are opaque leaves and are never traversed into.
package dotpath

import "strings"

// Split splits a dot-path key into its ordered segments.
//
// Every segment of a well-formed key is non-empty. Keys with leading,
// trailing, or doubled dots are a caller error and are passed through
// unchecked; the resulting empty segments simply never match anything.
func Split(key string) []string {
	return strings.Split(key, ".")
}

// Join is the inverse of Split.
func Join(segments []string) string {
	return strings.Join(segments, ".")
}

// Resolve walks m through all segments except the last and returns the
// container mapping holding the final segment, plus that segment name, so
// the caller can read, write, or delete the slot directly. One traversal
// serves get, set, and remove uniformly.
//
// For each intermediate segment that is absent, or present but not itself
// a mapping: when create is false Resolve reports not-found; when create
// is true it inserts (or replaces the non-mapping value with) an empty
// mapping and continues. With create enabled Resolve always succeeds.
func Resolve(m map[string]any, segments []string, create bool) (map[string]any, string, bool) {
	if m == nil || len(segments) == 0 {
		return nil, "", false
	}

	current := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			if !create {
				return nil, "", false
			}
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}

	return current, segments[len(segments)-1], true
}

// Flatten converts a nested mapping into a flat mapping of dot-path to
// leaf value. It descends into nested mappings only; arrays and scalars
// are leaves regardless of depth.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(m, "", out)
	return out
}

func flattenInto(m map[string]any, prefix string, out map[string]any) {
	for key, val := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if nested, ok := val.(map[string]any); ok {
			flattenInto(nested, path, out)
			continue
		}
		out[path] = val
	}
}
