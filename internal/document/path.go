// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map key or a list index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a segment addressing the map entry k.
func Key(k string) Segment {
	return Segment{key: k}
}

// Index returns a segment addressing list element i. Negative indexes are
// representable but never resolve.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether s is a list index segment.
func (s Segment) IsIndex() bool {
	return s.isIndex
}

// MapKey returns the key of a map key segment.
func (s Segment) MapKey() (string, bool) {
	return s.key, !s.isIndex
}

// ListIndex returns the index of a list index segment.
func (s Segment) ListIndex() (int, bool) {
	return s.index, s.isIndex
}

var bareKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	if bareKey.MatchString(s.key) {
		return s.key
	}
	return "[" + strconv.Quote(s.key) + "]"
}

// GoString makes segments readable in test failure output.
func (s Segment) GoString() string {
	if s.isIndex {
		return fmt.Sprintf("document.Index(%d)", s.index)
	}
	return fmt.Sprintf("document.Key(%q)", s.key)
}

// Path is a sequence of segments locating a value inside a document. The
// empty path addresses the document root. A Path carries no validity of
// its own; it is checked against a document only when it is resolved.
type Path []Segment

// Child returns a new path with seg appended. It never shares its backing
// array with p, so paths derived from a common parent stay independent.
func (p Path) Child(seg Segment) Path {
	ret := make(Path, len(p), len(p)+1)
	copy(ret, p)
	return append(ret, seg)
}

// Parent returns p without its last segment, or false for the root path.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	ret := make(Path, len(p)-1)
	copy(ret, p)
	return ret, true
}

// Last returns the final segment of p, or false for the root path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether p and other address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders p in the form accepted by ParsePath, e.g.
// `servers[0].name` or `labels["app.kubernetes.io/name"]`. The root path
// renders as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	var b strings.Builder
	for i, seg := range p {
		str := seg.String()
		if i > 0 && !strings.HasPrefix(str, "[") {
			b.WriteByte('.')
		}
		b.WriteString(str)
	}
	return b.String()
}

// ParsePath parses the text form produced by Path.String. Bare keys are
// separated by dots, list indexes are written as [N], and keys that are
// not plain identifiers are written as ["quoted"] with Go string escapes.
// An empty string or "." is the root path.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "." {
		return Path{}, nil
	}
	ret := Path{}
	i := 0
	if s[0] == '.' {
		i++
	}
	for i < len(s) {
		switch s[i] {
		case '[':
			seg, next, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			ret = append(ret, seg)
			i = next
		case '.':
			if i+1 >= len(s) || s[i+1] == '.' || s[i+1] == '[' {
				return nil, fmt.Errorf("invalid path %q: expected key after '.' at offset %d", s, i)
			}
			i++
		default:
			end := i
			for end < len(s) && s[end] != '.' && s[end] != '[' {
				end++
			}
			ret = append(ret, Key(s[i:end]))
			i = end
		}
	}
	return ret, nil
}

func parseBracket(s string, start int) (Segment, int, error) {
	i := start + 1
	if i < len(s) && s[i] == '"' {
		j := i + 1
		for j < len(s) && s[j] != '"' {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(s) {
			return Segment{}, 0, fmt.Errorf("invalid path %q: unterminated quoted key at offset %d", s, i)
		}
		key, err := strconv.Unquote(s[i : j+1])
		if err != nil {
			return Segment{}, 0, fmt.Errorf("invalid path %q: bad quoted key at offset %d: %w", s, i, err)
		}
		if j+1 >= len(s) || s[j+1] != ']' {
			return Segment{}, 0, fmt.Errorf("invalid path %q: expected ']' at offset %d", s, j+1)
		}
		return Key(key), j + 2, nil
	}

	end := strings.IndexByte(s[i:], ']')
	if end < 0 {
		return Segment{}, 0, fmt.Errorf("invalid path %q: unterminated index at offset %d", s, start)
	}
	idx, err := strconv.Atoi(s[i : i+end])
	if err != nil || idx < 0 {
		return Segment{}, 0, fmt.Errorf("invalid path %q: %q is not a list index", s, s[i:i+end])
	}
	return Index(idx), i + end + 1, nil
}
