package params

import (
	"strconv"
	"strings"
)

// Value is a tagged variant: either a scalar string or a nested mapping.
// The zero Value is an empty scalar.
type Value struct {
	scalar string
	nested Values
}

// Values is a nested mapping from string keys to values. Keys produced by
// empty-bracket appends are decimal strings ("0", "1", ...) scoped to their
// own level.
type Values map[string]Value

// NewValues returns an empty mapping ready for Add/Put calls.
func NewValues() Values {
	return make(Values)
}

// Scalar wraps a plain string value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// Nested wraps a mapping value. A nil mapping is treated as empty.
func Nested(vs Values) Value {
	if vs == nil {
		vs = make(Values)
	}
	return Value{nested: vs}
}

// IsNested reports whether the value is a mapping rather than a scalar.
func (v Value) IsNested() bool {
	return v.nested != nil
}

// Scalar returns the scalar text. It returns "" for nested values.
func (v Value) Scalar() string {
	return v.scalar
}

// Nested returns the underlying mapping, or nil for scalar values.
func (v Value) Nested() Values {
	return v.nested
}

// Interface materializes the value as a string or a map[string]any tree,
// suitable for JSON encoding.
func (v Value) Interface() any {
	if v.nested == nil {
		return v.scalar
	}
	return v.nested.Interface()
}

// Interface materializes the whole mapping as a map[string]any tree.
func (vs Values) Interface() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Interface()
	}
	return out
}

// Add inserts a scalar value under a bracket-notation key.
//
// The key splits into a base name and zero or more bracket segments. With no
// segments the value is stored flat under the name, replacing any previous
// value (last wins). Otherwise the path is walked segment by segment,
// creating nested mappings as needed; an empty segment ("[]") appends at the
// next free integer index of that level, and the final segment stores the
// scalar, overwriting whatever was there. A scalar sitting in the middle of
// the path is promoted to a nested mapping and its old text is discarded.
//
// An empty base name is a regular key: an all-bracket key like "[]" nests
// under "".
func (vs Values) Add(rawKey, value string) {
	vs.Put(rawKey, Scalar(value))
}

// Put behaves like Add but stores an arbitrary leaf value, which may itself
// be nested. It is used to build file-info mappings keyed by upload field
// names like "upfiles[]".
func (vs Values) Put(rawKey string, leaf Value) {
	name, segments := splitKey(rawKey)
	if len(segments) == 0 {
		vs[name] = leaf
		return
	}

	cur := vs.descend(name)
	last := len(segments) - 1
	for i, seg := range segments {
		key := seg
		if key == "" {
			key = cur.nextIndex()
		}
		if i == last {
			cur[key] = leaf
			return
		}
		cur = cur.descend(key)
	}
}

// descend returns the nested mapping stored under key, creating it first if
// the slot is absent or holds a scalar.
func (vs Values) descend(key string) Values {
	if v, ok := vs[key]; ok && v.nested != nil {
		return v.nested
	}
	child := make(Values)
	vs[key] = Value{nested: child}
	return child
}

// nextIndex returns the smallest decimal index, scanning from "0" upward,
// not already used as a key at this level. Each level owns its index space.
func (vs Values) nextIndex() string {
	for i := 0; ; i++ {
		key := strconv.Itoa(i)
		if _, ok := vs[key]; !ok {
			return key
		}
	}
}

// splitKey separates "name[a][b]" into "name" and ["a", "b"]. A key without
// brackets has no segments. An unclosed bracket degrades the whole key to a
// flat name; text between a closing bracket and the next opening one is
// ignored.
func splitKey(raw string) (string, []string) {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return raw, nil
	}

	name := raw[:open]
	var segments []string
	rest := raw[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return raw, nil
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
		if next := strings.IndexByte(rest, '['); next >= 0 {
			rest = rest[next:]
		} else {
			rest = ""
		}
	}
	return name, segments
}
