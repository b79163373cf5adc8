package features

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ipv4RE is a strict string match for a dotted-quad host: four groups of
// one to three digits. No decimal range check, by contract.
var ipv4RE = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// hostParts is a public-suffix-aware split of a hostname. For
// "login.example.co.uk": Subdomain "login", Domain "example",
// Suffix "co.uk", Registrable "example.co.uk".
type hostParts struct {
	Subdomain   string
	Domain      string
	Suffix      string
	Registrable string
}

// splitHost decomposes host using the public suffix list, so multi-label
// suffixes like co.uk are handled correctly. IP literals and hosts with no
// derivable registrable domain collapse into the Domain field, with empty
// Subdomain and Suffix.
func splitHost(host string) hostParts {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return hostParts{}
	}
	if ipv4RE.MatchString(host) {
		return hostParts{Domain: host}
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Single-label or unlisted host: treat the whole thing as the
		// bare domain, the same way tldextract does.
		return hostParts{Domain: host}
	}

	parts := hostParts{Registrable: etld1}
	if idx := strings.Index(etld1, "."); idx > 0 {
		parts.Domain = etld1[:idx]
		parts.Suffix = etld1[idx+1:]
	} else {
		parts.Domain = etld1
	}
	if host != etld1 && strings.HasSuffix(host, "."+etld1) {
		parts.Subdomain = strings.TrimSuffix(host, "."+etld1)
	}
	return parts
}

// RegistrableDomain returns the eTLD+1 of the URL's host, or "" when none
// can be derived (IP literals, unlisted hosts, unparseable input).
func RegistrableDomain(normalizedURL string) string {
	host := hostOf(normalizedURL)
	if host == "" {
		return ""
	}
	return splitHost(host).Registrable
}
