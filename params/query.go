package params

import (
	"net/url"
	"strings"
)

// ParseQuery parses a query string or urlencoded form body into a nested
// mapping. Pairs are split on "&" (empty tokens, as in "a=1&&b=2", are
// skipped), each pair on the first "=" (a missing "=" yields an empty
// value), and both sides are form-decoded ("+" becomes a space, percent
// escapes are resolved). Decoding is lenient: a token that fails to decode
// is kept as-is rather than failing the whole parse.
//
// Empty input yields an empty mapping. The function is pure and applies no
// size limits; the caller bounds the input.
func ParseQuery(raw string) Values {
	vs := NewValues()
	for raw != "" {
		var token string
		token, raw, _ = strings.Cut(raw, "&")
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		vs.Add(formDecode(key), formDecode(value))
	}
	return vs
}

func formDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
