// Package features turns a raw URL string into the fixed numeric feature
// map consumed by the classifier and the risk scorer. Lexical features are
// pure string functions; domain features require WHOIS/TLS network lookups
// and degrade to sentinel values when those are unavailable.
package features

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL canonicalizes a raw string into something that parses as an
// absolute URL: trims whitespace, prepends http:// when no scheme is present,
// and percent-decodes once. It never fails; structural validation is the
// caller's job.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !schemeRE.MatchString(u) {
		u = "http://" + u
	}
	// Single percent-decode. PathUnescape leaves "+" alone, matching the
	// behavior expected for URLs (a "+" in a path is a literal plus).
	if decoded, err := url.PathUnescape(u); err == nil {
		u = decoded
	}
	return u
}

// ValidateURL rejects input that must not reach feature extraction: empty
// strings, over-length strings, and strings that do not parse into a URL
// with a host once normalized. The returned string is a client-facing
// reason; empty means the URL is acceptable.
func ValidateURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "URL cannot be empty"
	}
	if len(trimmed) > 2000 {
		return "URL exceeds maximum length of 2000 characters"
	}
	test := trimmed
	if !schemeRE.MatchString(test) {
		test = "http://" + test
	}
	parsed, err := url.Parse(test)
	if err != nil || parsed.Host == "" {
		return "Invalid URL format"
	}
	return ""
}
