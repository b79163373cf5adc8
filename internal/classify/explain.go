package classify

import (
	"math"
	"sort"
	"strings"
)

// description holds the two human sentences for a feature: the first is
// used when the feature points toward phishing, the second when it points
// toward legitimacy.
type description struct {
	Phishing   string
	Legitimate string
}

var featureDescriptions = map[string]description{
	"url_length":                {"URL is unusually long", "URL length is normal"},
	"domain_length":             {"Domain name is suspiciously long", "Domain name length is normal"},
	"path_length":               {"URL path is very long", "URL path length is normal"},
	"dot_count":                 {"Excessive dots in URL", "Normal number of dots"},
	"hyphen_count":              {"Multiple hyphens detected in URL", "Normal hyphen usage"},
	"at_count":                  {"'@' symbol found — may redirect to different domain", "No '@' symbol"},
	"question_mark_count":       {"Multiple query parameters — possible obfuscation", "Normal query parameters"},
	"and_count":                 {"Excessive query parameters", "Normal query parameters"},
	"equal_count":               {"Multiple assignment operators in query", "Normal query syntax"},
	"underscore_count":          {"Unusual underscores detected", "Normal underscore usage"},
	"slash_count":               {"Excessive forward slashes — possible path manipulation", "Normal path depth"},
	"percent_count":             {"Percent-encoded characters detected — possible obfuscation", "No obfuscation detected"},
	"has_ip_address":            {"IP address used instead of domain name", "Domain name used (not IP)"},
	"has_https":                 {"No HTTPS — connection is not encrypted", "HTTPS certificate present"},
	"has_at_symbol":             {"'@' symbol in URL — browser ignores everything before it", "No '@' symbol present"},
	"has_double_slash_redirect": {"Double slash redirect detected in path", "No double slash redirect"},
	"has_hyphen_in_domain":      {"Hyphen in domain name — common in phishing", "No hyphen in domain"},
	"subdomain_count":           {"Excessive number of subdomains", "Normal subdomain depth"},
	"suspicious_keyword_count":  {"Suspicious keywords found (login, verify, secure, etc.)", "No suspicious keywords"},
	"has_suspicious_keyword":    {"Phishing keyword detected in URL", "No phishing keywords found"},
	"brand_in_subdomain":        {"Brand name impersonation detected in subdomain", "No brand impersonation"},
	"brand_in_path":             {"Brand name impersonation detected in path", "No brand impersonation"},
	"is_suspicious_tld":         {"Suspicious top-level domain (TLD) detected", "TLD appears legitimate"},
	"domain_entropy":            {"Domain name appears randomly generated", "Domain name appears human-readable"},
	"digit_ratio":               {"High proportion of digits — possibly randomly generated", "Normal digit usage"},
	"hostname_dot_count":        {"Too many dots in hostname", "Normal hostname structure"},
	"has_punycode":              {"Punycode/internationalized domain — possible homograph attack", "No punycode detected"},
	"is_url_shortened":          {"URL shortener detected — hides true destination", "Full URL visible"},
	"domain_age_days":           {"Domain registered recently — less than 30 days old", "Domain has established history"},
	"domain_expiry_days":        {"Domain expires soon — low commitment by registrant", "Domain has long registration"},
	"has_ssl_certificate":       {"No valid SSL certificate found", "Valid SSL certificate present"},
	"ssl_age_days":              {"SSL certificate is very new", "SSL certificate has established history"},
	"registrar_known":           {"Unknown or no registrar information", "Domain registered with known registrar"},
	"domain_registered":         {"Domain registration information unavailable", "Domain registration information found"},
}

// thresholdRule is one fixed predicate of the rule-based explainer.
type thresholdRule struct {
	Feature string
	Match   func(v float64) bool
}

// thresholdRules fire when a feature crosses its phishing threshold. A rule
// is only evaluated when its feature is present in the map, so lexical-only
// requests never trigger WHOIS/TLS rules.
var thresholdRules = []thresholdRule{
	{"url_length", func(v float64) bool { return v > 75 }},
	{"dot_count", func(v float64) bool { return v > 5 }},
	{"has_ip_address", func(v float64) bool { return v == 1 }},
	{"has_https", func(v float64) bool { return v == 0 }},
	{"has_at_symbol", func(v float64) bool { return v == 1 }},
	{"subdomain_count", func(v float64) bool { return v > 2 }},
	{"has_suspicious_keyword", func(v float64) bool { return v == 1 }},
	{"brand_in_subdomain", func(v float64) bool { return v == 1 }},
	{"domain_entropy", func(v float64) bool { return v > 3.5 }},
	{"is_url_shortened", func(v float64) bool { return v == 1 }},
	{"has_punycode", func(v float64) bool { return v == 1 }},
	{"domain_age_days", func(v float64) bool { return v >= 0 && v <= 30 }},
	{"has_ssl_certificate", func(v float64) bool { return v == 0 }},
	{"is_suspicious_tld", func(v float64) bool { return v == 1 }},
	{"percent_count", func(v float64) bool { return v > 3 }},
}

// ruleWeight is the placeholder attribution weight assigned to triggered
// threshold rules for display purposes.
const ruleWeight = 0.2

const maxAttributions = 10

// Explainer attributes a verdict to individual features. With a loaded
// model it computes exact additive attributions toward the phishing class;
// without one (or when attribution fails) it falls back to the threshold
// rules. The fallback only ever produces phishing-direction attributions:
// it explains risk signals, not reassurance.
type Explainer struct {
	model        *LinearModel
	featureNames []string
}

// NewExplainer creates an attribution-mode explainer for a loaded model.
func NewExplainer(model *LinearModel, featureNames []string) *Explainer {
	return &Explainer{model: model, featureNames: featureNames}
}

// NewRuleExplainer creates a rule-only explainer for fallback mode.
func NewRuleExplainer() *Explainer {
	return &Explainer{}
}

// Explain returns the top attributions for a prediction, sorted by
// descending absolute weight and capped at ten. vector must be in the
// model's trained order; feats is the full feature map used by the rule
// fallback.
func (e *Explainer) Explain(vector []float64, feats map[string]float64) []Attribution {
	if e.model != nil {
		if attrs, err := e.model.Attribute(vector); err == nil {
			return e.rankAttributions(vector, attrs)
		}
		// Attribution failure degrades to rules rather than propagating.
	}
	return ruleAttributions(feats)
}

func (e *Explainer) rankAttributions(vector, weights []float64) []Attribution {
	out := make([]Attribution, 0, len(e.featureNames))
	for i, name := range e.featureNames {
		w := 0.0
		if i < len(weights) {
			w = weights[i]
		}
		out = append(out, Attribution{
			Feature:   name,
			Value:     vector[i],
			Weight:    w,
			Impact:    impactTier(w),
			Direction: direction(w),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Weight) > math.Abs(out[j].Weight)
	})
	if len(out) > maxAttributions {
		out = out[:maxAttributions]
	}
	return out
}

// ruleAttributions evaluates the threshold table against the feature map.
// Every triggered rule becomes a fixed-weight, high-impact attribution
// toward phishing.
func ruleAttributions(feats map[string]float64) []Attribution {
	var out []Attribution
	for _, rule := range thresholdRules {
		v, ok := feats[rule.Feature]
		if !ok || !rule.Match(v) {
			continue
		}
		out = append(out, Attribution{
			Feature:   rule.Feature,
			Value:     v,
			Weight:    ruleWeight,
			Impact:    "high",
			Direction: LevelPhishing,
		})
		if len(out) == maxAttributions {
			break
		}
	}
	return out
}

// Readable maps attributions to their human sentences, selected by
// direction, deduplicated while preserving first-seen order.
func Readable(attrs []Attribution) []string {
	seen := make(map[string]bool, len(attrs))
	out := []string{}
	for _, a := range attrs {
		desc, ok := featureDescriptions[a.Feature]
		if !ok {
			continue
		}
		text := desc.Phishing
		if a.Direction != LevelPhishing {
			text = desc.Legitimate
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

// TopFeatures converts the leading attributions into display entries,
// capped at limit.
func TopFeatures(attrs []Attribution, limit int) []TopFeature {
	if len(attrs) > limit {
		attrs = attrs[:limit]
	}
	out := make([]TopFeature, 0, len(attrs))
	for _, a := range attrs {
		desc := featureDescriptions[a.Feature]
		text := desc.Phishing
		if a.Direction != LevelPhishing {
			text = desc.Legitimate
		}
		out = append(out, TopFeature{
			Name:        a.Feature,
			Label:       titleLabel(a.Feature),
			Value:       a.Value,
			Weight:      round2(math.Abs(a.Weight) * 100),
			Direction:   a.Direction,
			Description: text,
		})
	}
	return out
}

func impactTier(w float64) string {
	abs := math.Abs(w)
	switch {
	case abs > 0.1:
		return "high"
	case abs > 0.05:
		return "medium"
	default:
		return "low"
	}
}

func direction(w float64) string {
	if w > 0 {
		return LevelPhishing
	}
	return LevelLegitimate
}

// titleLabel turns "url_length" into "Url Length".
func titleLabel(feature string) string {
	words := strings.Split(feature, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
