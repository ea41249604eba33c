// Package util contains helpers shared by the pillar packages.
package util

const upperhex = `0123456789ABCDEF`

// Quote percent-encodes all bytes of the given string except the RFC 3986
// unreserved characters and '/'. This is the encoding that pillar URL templates
// expect for substituted minion ids and grain values.
func Quote(s string) string {
	hexCount := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			hexCount++
		}
	}
	if hexCount == 0 {
		return s
	}
	t := make([]byte, len(s)+2*hexCount)
	j := 0
	for i := 0; i < len(s); i++ {
		if c := s[i]; shouldEscape(c) {
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
		} else {
			t[j] = c
			j++
		}
	}
	return string(t)
}

func shouldEscape(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '~', '/':
		return false
	}
	return true
}

// Available reports whether the URL encoder behaves as required. Sources that build
// URLs register themselves only when this holds.
func Available() bool {
	return Quote(`a b/c`) == `a%20b/c`
}
