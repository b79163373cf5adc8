package classify

import "math"

// Risk levels, ordered by severity.
const (
	LevelLegitimate = "legitimate"
	LevelSuspicious = "suspicious"
	LevelPhishing   = "phishing"
)

// bonusRule is one auditable rule signal added on top of the model
// probability.
type bonusRule struct {
	Name   string
	Weight int
	Match  func(f map[string]float64) bool
}

// bonusRules mirror the lexical/domain flags so the verdict is never purely
// opaque: probability dominates at 70% weight, rules add a capped bonus.
var bonusRules = []bonusRule{
	{"has_ip_address", 5, flagSet("has_ip_address")},
	{"no_https", 5, func(f map[string]float64) bool { return featOr(f, "has_https", 1) == 0 }},
	{"has_at_symbol", 5, flagSet("has_at_symbol")},
	{"brand_in_subdomain", 5, flagSet("brand_in_subdomain")},
	{"is_url_shortened", 3, flagSet("is_url_shortened")},
	{"has_suspicious_keyword", 3, flagSet("has_suspicious_keyword")},
	{"is_suspicious_tld", 2, flagSet("is_suspicious_tld")},
	{"has_punycode", 4, flagSet("has_punycode")},
	{"new_domain", 4, func(f map[string]float64) bool {
		age := featOr(f, "domain_age_days", -1)
		return age > 0 && age <= 30
	}},
}

// RiskScore fuses the phishing probability with the rule bonus table into
// an integer in [0,100]: base = probability*70, plus triggered bonuses,
// clamped to 100 and truncated.
func RiskScore(probability float64, feats map[string]float64) int {
	base := probability * 70
	bonus := 0
	for _, rule := range bonusRules {
		if rule.Match(feats) {
			bonus += rule.Weight
		}
	}
	score := int(base + float64(bonus))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// RiskLevel maps a score to the three-level verdict.
func RiskLevel(score int) string {
	switch {
	case score >= 70:
		return LevelPhishing
	case score >= 40:
		return LevelSuspicious
	default:
		return LevelLegitimate
	}
}

// RiskColor is the display color for a level. No behavioral significance.
func RiskColor(level string) string {
	switch level {
	case LevelPhishing:
		return "#ff2d55"
	case LevelSuspicious:
		return "#ffcc00"
	case LevelLegitimate:
		return "#00ff9f"
	default:
		return "#888"
	}
}

// Confidence expresses certainty in the reported verdict, not the raw
// phishing probability: phishing is capped at 99.9, legitimate reports the
// complement. Rounded to one decimal.
func Confidence(level string, probability float64) float64 {
	switch level {
	case LevelPhishing:
		return round1(math.Min(probability*100, 99.9))
	case LevelSuspicious:
		return round1(probability * 100)
	default:
		return round1((1 - probability) * 100)
	}
}

func flagSet(name string) func(map[string]float64) bool {
	return func(f map[string]float64) bool { return featOr(f, name, 0) == 1 }
}

// featOr reads a feature with a default for absent keys, so a lexical-only
// map never panics on domain rules.
func featOr(f map[string]float64, name string, def float64) float64 {
	if v, ok := f[name]; ok {
		return v
	}
	return def
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
