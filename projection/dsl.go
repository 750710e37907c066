// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package projection

import (
	"strings"

	"github.com/solidcoredata/dcstore/chunkerr"
)

// ParseDSL parses a comma-separated list of dotted field paths: "\." escapes
// a literal dot inside a segment, "\\" escapes a backslash. An empty or
// absent string selects everything.
func ParseDSL(s string) (*Tree, error) {
	root := &Tree{}
	if strings.TrimSpace(s) == "" {
		return root, nil
	}
	for _, raw := range splitUnescaped(s, ',') {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		segments, err := splitPath(raw)
		if err != nil {
			return nil, err
		}
		root.insert(segments)
	}
	return root, nil
}

// splitUnescaped splits s on sep, treating a backslash as escaping the next
// rune so "\," does not end a segment list entry and "\\" survives as a
// literal backslash for splitPath to unescape later.
func splitUnescaped(s string, sep rune) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune('\\')
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	parts = append(parts, cur.String())
	return parts
}

// splitPath splits one dotted path into segments, unescaping "\." into a
// literal "." within a segment and "\\" into a literal "\".
func splitPath(path string) ([]string, error) {
	var segments []string
	var cur strings.Builder
	escaped := false
	for _, r := range path {
		switch {
		case escaped:
			switch r {
			case '.', '\\':
				cur.WriteRune(r)
			default:
				return nil, chunkerr.Newf(chunkerr.BadProjection, "projection: invalid escape %q in %q", r, path)
			}
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, chunkerr.Newf(chunkerr.BadProjection, "projection: trailing escape in %q", path)
	}
	segments = append(segments, cur.String())
	for _, seg := range segments {
		if seg == "" {
			return nil, chunkerr.Newf(chunkerr.BadProjection, "projection: empty path segment in %q", path)
		}
	}
	return segments, nil
}
