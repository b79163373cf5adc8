package classify

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/features"
)

// FallbackModelName is reported when no trained artifact is loaded.
const FallbackModelName = "rule-based"

const (
	maxReadable    = 6
	maxTopFeatures = 6
)

// ReputationLookup supplies third-party engine verdict counts for a URL.
// Implementations must degrade to a zeroed, unavailable result on any
// failure instead of returning an error.
type ReputationLookup interface {
	Lookup(ctx context.Context, url, apiKey string) (malicious, suspicious int, available bool)
}

// Options control a single prediction request.
type Options struct {
	// IncludeDomainFeatures enables the slow, network-bound WHOIS/TLS
	// extraction for this request.
	IncludeDomainFeatures bool
	// VirusTotalKey, when non-empty, enables the reputation lookup.
	VirusTotalKey string
}

// Predictor sequences normalization, extraction, scoring and explanation
// into a Result.
// The model artifact and explainer are initialized once (Load, before
// serving begins) and read-only afterwards, so a single Predictor is safe
// for concurrent requests.
type Predictor struct {
	logger     *slog.Logger
	domains    *features.DomainExtractor
	reputation ReputationLookup

	artifact  *Artifact
	explainer *Explainer
}

// NewPredictor creates a predictor in rule-based fallback mode. domains and
// reputation may be nil, disabling the corresponding feature groups.
func NewPredictor(logger *slog.Logger, domains *features.DomainExtractor, reputation ReputationLookup) *Predictor {
	return &Predictor{
		logger:     logger,
		domains:    domains,
		reputation: reputation,
		explainer:  NewRuleExplainer(),
	}
}

// Load reads a model artifact and switches the predictor into model mode.
// On failure the predictor stays (or reverts to) fallback mode; it does not
// retry per-request. Load is not safe to call concurrently with Predict: it
// is a warm-up step, called before serving begins.
func (p *Predictor) Load(path string) error {
	artifact, err := LoadArtifact(path)
	if err != nil {
		p.artifact = nil
		p.explainer = NewRuleExplainer()
		return err
	}
	p.artifact = artifact
	p.explainer = NewExplainer(&artifact.Model, artifact.FeatureNames)
	p.logger.Info("model loaded",
		"model", artifact.ModelName(),
		"features", len(artifact.FeatureNames),
	)
	return nil
}

// Loaded reports whether a trained artifact is active.
func (p *Predictor) Loaded() bool { return p.artifact != nil }

// Artifact returns the loaded artifact, or nil in fallback mode.
func (p *Predictor) Artifact() *Artifact { return p.artifact }

// FeatureNames returns the ordering the classifier consumes: the artifact's
// trained list when loaded, the lexical list otherwise.
func (p *Predictor) FeatureNames() []string {
	if p.artifact != nil {
		return p.artifact.FeatureNames
	}
	return features.LexicalFeatureNames
}

// Predict runs the full pipeline for one URL. Extraction failures degrade
// to sentinel feature values; the only error returned is a feature-vector/
// model contract violation, which indicates a build-time mismatch.
func (p *Predictor) Predict(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	start := time.Now()

	normalized := features.NormalizeURL(rawURL)
	feats := features.ExtractLexical(normalized)

	if opts.IncludeDomainFeatures && p.domains != nil {
		for name, v := range p.domains.Extract(ctx, normalized) {
			feats[name] = v
		}
	}
	if opts.VirusTotalKey != "" && p.reputation != nil {
		malicious, suspicious, available := p.reputation.Lookup(ctx, normalized, opts.VirusTotalKey)
		feats["vt_malicious_count"] = float64(malicious)
		feats["vt_suspicious_count"] = float64(suspicious)
		feats["vt_available"] = boolToFloat(available)
	}

	// Fill the vector in the trained order; names the extractors did not
	// produce default to 0 so the classifier always sees a full vector.
	names := p.FeatureNames()
	vector := make([]float64, len(names))
	for i, name := range names {
		vector[i] = feats[name]
	}

	var probability float64
	if p.artifact != nil {
		prob, err := p.artifact.Model.PredictProbability(vector)
		if err != nil {
			return nil, err
		}
		probability = prob
	} else {
		probability = ruleProbability(feats)
	}

	score := RiskScore(probability, feats)
	level := RiskLevel(score)

	attrs := p.explainer.Explain(vector, feats)
	readable := Readable(attrs)
	if len(readable) > maxReadable {
		readable = readable[:maxReadable]
	}

	modelUsed := FallbackModelName
	if p.artifact != nil {
		modelUsed = p.artifact.ModelName()
	}

	return &Result{
		URL:           rawURL,
		NormalizedURL: normalized,
		Prediction:    level,
		Probability:   round4(probability),
		Confidence:    Confidence(level, probability),
		RiskScore:     score,
		RiskLevel:     level,
		RiskColor:     RiskColor(level),
		Explanations:  readable,
		TopFeatures:   TopFeatures(attrs, maxTopFeatures),
		Features:      roundFeatures(feats),
		ModelUsed:     modelUsed,
		LatencyMs:     round1(float64(time.Since(start).Microseconds()) / 1000),
		Timestamp:     start.UTC().Format(time.RFC3339),
	}, nil
}

// ruleProbability estimates phishing probability without a model: the
// unweighted mean of ten fixed indicator checks, capped at 0.99.
func ruleProbability(feats map[string]float64) float64 {
	checks := []bool{
		featOr(feats, "has_ip_address", 0) == 1,
		featOr(feats, "has_https", 1) == 0,
		featOr(feats, "has_at_symbol", 0) == 1,
		featOr(feats, "brand_in_subdomain", 0) == 1,
		featOr(feats, "is_url_shortened", 0) == 1,
		featOr(feats, "has_suspicious_keyword", 0) == 1,
		featOr(feats, "is_suspicious_tld", 0) == 1,
		featOr(feats, "has_punycode", 0) == 1,
		featOr(feats, "url_length", 0) > 75,
		featOr(feats, "subdomain_count", 0) > 2,
	}
	hits := 0
	for _, c := range checks {
		if c {
			hits++
		}
	}
	p := float64(hits) / float64(len(checks))
	return math.Min(p, 0.99)
}

func roundFeatures(feats map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(feats))
	for name, v := range feats {
		out[name] = round4(v)
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
