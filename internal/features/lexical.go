package features

import (
	"math"
	"net/url"
	"strings"
)

// suspiciousKeywords are case-insensitive substrings commonly found in
// credential-harvesting URLs.
var suspiciousKeywords = []string{
	"login", "signin", "sign-in", "verify", "verification", "secure",
	"account", "update", "confirm", "banking", "paypal", "ebay", "amazon",
	"apple", "microsoft", "google", "facebook", "instagram", "twitter",
	"password", "credential", "wallet", "crypto", "bitcoin", "urgent",
	"alert", "suspended", "limited", "access", "click", "free", "prize",
	"winner", "congratulations", "bonus", "offer", "deal", "buy", "cheap",
}

// brandNames are frequently impersonated brands, matched against the
// subdomain and path separately.
var brandNames = []string{
	"paypal", "amazon", "apple", "microsoft", "google", "facebook",
	"netflix", "instagram", "twitter", "linkedin", "dropbox", "chase",
	"wellsfargo", "bankofamerica", "citibank", "hsbc", "barclays",
}

// shortenerDomains are known URL shorteners, matched as substrings of the
// whole URL.
var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	"buff.ly", "adf.ly", "tr.im", "short.link", "rb.gy",
}

// suspiciousTLDs are public suffixes with a high phishing rate. The full
// suffix is looked up, so "co.uk" never matches "uk".
var suspiciousTLDs = map[string]bool{
	"xyz": true, "top": true, "club": true, "online": true, "site": true,
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true, "pw": true,
	"cc": true, "info": true, "biz": true, "cn": true, "ru": true,
}

// LexicalFeatureNames is the fixed, ordered list of lexical feature names.
// The order is part of the model artifact contract and must not change for
// a given trained model.
var LexicalFeatureNames = []string{
	"url_length", "domain_length", "path_length", "dot_count",
	"hyphen_count", "at_count", "question_mark_count", "and_count",
	"equal_count", "underscore_count", "slash_count", "percent_count",
	"has_ip_address", "has_https", "has_at_symbol",
	"has_double_slash_redirect", "has_hyphen_in_domain",
	"subdomain_count", "suspicious_keyword_count", "has_suspicious_keyword",
	"brand_in_subdomain", "brand_in_path", "is_suspicious_tld",
	"domain_entropy", "digit_ratio", "hostname_dot_count",
	"has_punycode", "is_url_shortened",
}

// DomainFeatureNames is the fixed, ordered list of network-derived features.
var DomainFeatureNames = []string{
	"domain_age_days", "domain_expiry_days", "has_ssl_certificate",
	"ssl_age_days", "registrar_known", "domain_registered",
}

// AllFeatureNames is LexicalFeatureNames followed by DomainFeatureNames.
var AllFeatureNames = append(append([]string{}, LexicalFeatureNames...), DomainFeatureNames...)

// hostOf parses a normalized URL and returns its hostname without port or
// userinfo. Malformed input yields "".
func hostOf(normalizedURL string) string {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// ExtractLexical derives the lexical feature map from a normalized URL.
// It is a pure function of the string: no network access, and malformed
// input degrades to zero values instead of failing.
func ExtractLexical(normalizedURL string) map[string]float64 {
	var scheme, host, path string
	if parsed, err := url.Parse(normalizedURL); err == nil {
		scheme = parsed.Scheme
		host = parsed.Hostname()
		path = parsed.Path
	}
	parts := splitHost(host)
	urlLower := strings.ToLower(normalizedURL)

	feats := make(map[string]float64, len(LexicalFeatureNames))

	feats["url_length"] = float64(len(normalizedURL))
	feats["domain_length"] = float64(len(parts.Domain))
	feats["path_length"] = float64(len(path))

	feats["dot_count"] = float64(strings.Count(normalizedURL, "."))
	feats["hyphen_count"] = float64(strings.Count(normalizedURL, "-"))
	feats["at_count"] = float64(strings.Count(normalizedURL, "@"))
	feats["question_mark_count"] = float64(strings.Count(normalizedURL, "?"))
	feats["and_count"] = float64(strings.Count(normalizedURL, "&"))
	feats["equal_count"] = float64(strings.Count(normalizedURL, "="))
	feats["underscore_count"] = float64(strings.Count(normalizedURL, "_"))
	feats["slash_count"] = float64(strings.Count(normalizedURL, "/"))
	feats["percent_count"] = float64(strings.Count(normalizedURL, "%"))

	feats["has_ip_address"] = boolFeat(ipv4RE.MatchString(host))
	feats["has_https"] = boolFeat(strings.EqualFold(scheme, "https"))
	feats["has_at_symbol"] = boolFeat(strings.Contains(normalizedURL, "@"))
	feats["has_double_slash_redirect"] = boolFeat(strings.Contains(path, "//"))
	feats["has_hyphen_in_domain"] = boolFeat(strings.Contains(parts.Domain, "-"))

	subdomainCount := 0.0
	if parts.Subdomain != "" {
		subdomainCount = float64(strings.Count(parts.Subdomain, ".") + 1)
	}
	feats["subdomain_count"] = subdomainCount

	keywordCount := 0.0
	for _, kw := range suspiciousKeywords {
		if strings.Contains(urlLower, kw) {
			keywordCount++
		}
	}
	feats["suspicious_keyword_count"] = keywordCount
	feats["has_suspicious_keyword"] = boolFeat(keywordCount > 0)

	feats["brand_in_subdomain"] = boolFeat(containsAny(parts.Subdomain, brandNames))
	feats["brand_in_path"] = boolFeat(containsAny(strings.ToLower(path), brandNames))
	feats["is_suspicious_tld"] = boolFeat(suspiciousTLDs[parts.Suffix])

	feats["domain_entropy"] = round4(stringEntropy(parts.Domain))
	feats["digit_ratio"] = round4(digitRatio(normalizedURL))
	feats["hostname_dot_count"] = float64(strings.Count(host, "."))

	feats["has_punycode"] = boolFeat(strings.Contains(urlLower, "xn--"))
	feats["is_url_shortened"] = boolFeat(containsAny(urlLower, shortenerDomains))

	return feats
}

// stringEntropy is the Shannon entropy (base 2) of the character
// distribution of s. Empty input is exactly 0.
func stringEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// digitRatio is the proportion of ASCII digits in s, with the denominator
// floored at 1 so an empty string yields exactly 0.
func digitRatio(s string) float64 {
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
	}
	return float64(digits) / math.Max(float64(len(s)), 1)
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func boolFeat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
