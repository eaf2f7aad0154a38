// Package params builds nested parameter structures from flat keys written
// in PHP-style bracket notation, as used in query strings and form bodies.
//
// A raw key like "user[address][city]" resolves to a nested mapping, and
// empty brackets append at the next free integer index of their own level:
//
//	vs := params.NewValues()
//	vs.Add("tags[]", "go")
//	vs.Add("tags[]", "http")
//	// => {"tags": {"0": "go", "1": "http"}}
//
// ParseQuery applies the same rules to a full query or urlencoded body
// string:
//
//	vs := params.ParseQuery("foo[][]=1&foo[1][]=1&foo[1][]=1")
//	// => {"foo": {"0": {"0": "1"}, "1": {"0": "1", "1": "1"}}}
//
// The package is pure: it performs no I/O and enforces no size limits.
// Callers are expected to bound the input before parsing it.
package params
