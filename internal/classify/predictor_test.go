package classify

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/features"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPredict_RuleFallback(t *testing.T) {
	p := NewPredictor(testLogger(), nil, nil)

	result, err := p.Predict(context.Background(), "paypa1-secure.verify-account.xyz/login", Options{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if result.NormalizedURL != "http://paypa1-secure.verify-account.xyz/login" {
		t.Errorf("normalized = %q", result.NormalizedURL)
	}
	if result.ModelUsed != FallbackModelName {
		t.Errorf("model_used = %q, want %q", result.ModelUsed, FallbackModelName)
	}

	// Three of the ten indicator checks fire: no https, suspicious keyword,
	// suspicious TLD.
	if result.Probability != 0.3 {
		t.Errorf("probability = %v, want 0.3", result.Probability)
	}
	// base 0.3*70=21, bonuses no_https+5, keyword+3, tld+2.
	if result.RiskScore != 31 {
		t.Errorf("risk score = %d, want 31", result.RiskScore)
	}
	if result.RiskLevel != LevelLegitimate {
		t.Errorf("risk level = %q", result.RiskLevel)
	}
	if result.Confidence != 70 {
		t.Errorf("confidence = %v, want 70", result.Confidence)
	}
	if result.RiskColor != "#00ff9f" {
		t.Errorf("risk color = %q", result.RiskColor)
	}

	if len(result.Explanations) == 0 {
		t.Fatal("expected rule explanations")
	}
	if result.Explanations[0] != "No HTTPS — connection is not encrypted" {
		t.Errorf("first explanation = %q", result.Explanations[0])
	}
	if len(result.Features) != len(features.LexicalFeatureNames) {
		t.Errorf("feature map has %d entries, want %d",
			len(result.Features), len(features.LexicalFeatureNames))
	}
	if _, err := time.Parse(time.RFC3339, result.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", result.Timestamp, err)
	}
}

func TestPredict_RuleFallback_CleanURL(t *testing.T) {
	p := NewPredictor(testLogger(), nil, nil)

	result, err := p.Predict(context.Background(), "https://www.wikipedia.org/wiki/Go", Options{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result.Probability != 0 {
		t.Errorf("probability = %v, want 0", result.Probability)
	}
	if result.RiskScore != 0 {
		t.Errorf("risk score = %d, want 0", result.RiskScore)
	}
	if result.Prediction != LevelLegitimate {
		t.Errorf("prediction = %q", result.Prediction)
	}
	if result.Confidence != 100 {
		t.Errorf("confidence = %v, want 100", result.Confidence)
	}
	if result.Explanations == nil || len(result.Explanations) != 0 {
		t.Errorf("explanations = %#v, want empty slice", result.Explanations)
	}
	if len(result.TopFeatures) != 0 {
		t.Errorf("top features = %+v, want none", result.TopFeatures)
	}
}

func TestPredict_ModelMode(t *testing.T) {
	path := writeArtifact(t, validArtifactJSON)
	p := NewPredictor(testLogger(), nil, nil)
	if err := p.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.Loaded() {
		t.Fatal("predictor did not report loaded model")
	}

	result, err := p.Predict(context.Background(), "https://example.com", Options{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result.ModelUsed != "logreg-v1" {
		t.Errorf("model_used = %q, want logreg-v1", result.ModelUsed)
	}

	// z = 0.1 + 0.5*(1-0.5) + (-1.2)*(0-0) = 0.35, sigmoid = 0.5866
	if result.Probability != 0.5866 {
		t.Errorf("probability = %v, want 0.5866", result.Probability)
	}

	// Attributions come from the model, not the rule table.
	if len(result.TopFeatures) != 2 {
		t.Fatalf("top features = %+v, want 2", result.TopFeatures)
	}
	if result.TopFeatures[0].Name != "has_https" {
		t.Errorf("leading feature = %q, want has_https", result.TopFeatures[0].Name)
	}
	if result.TopFeatures[0].Weight != 25 {
		t.Errorf("leading feature weight = %v, want 25", result.TopFeatures[0].Weight)
	}
	if result.TopFeatures[0].Direction != LevelPhishing {
		t.Errorf("leading feature direction = %q", result.TopFeatures[0].Direction)
	}
}

func TestLoad_FailureFallsBack(t *testing.T) {
	p := NewPredictor(testLogger(), nil, nil)
	if err := p.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected load error")
	}
	if p.Loaded() {
		t.Fatal("predictor reports loaded after failed load")
	}
	if p.Artifact() != nil {
		t.Fatal("artifact not cleared after failed load")
	}
	if got := p.FeatureNames(); len(got) != len(features.LexicalFeatureNames) {
		t.Fatalf("fallback feature names = %d, want %d", len(got), len(features.LexicalFeatureNames))
	}

	result, err := p.Predict(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("Predict after failed load: %v", err)
	}
	if result.ModelUsed != FallbackModelName {
		t.Errorf("model_used = %q, want %q", result.ModelUsed, FallbackModelName)
	}
}

type stubReputation struct {
	malicious, suspicious int
	available             bool
	gotKey                string
}

func (s *stubReputation) Lookup(ctx context.Context, url, apiKey string) (int, int, bool) {
	s.gotKey = apiKey
	return s.malicious, s.suspicious, s.available
}

func TestPredict_ReputationFeatures(t *testing.T) {
	stub := &stubReputation{malicious: 5, suspicious: 2, available: true}
	p := NewPredictor(testLogger(), nil, stub)

	result, err := p.Predict(context.Background(), "https://example.com", Options{VirusTotalKey: "k"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if stub.gotKey != "k" {
		t.Errorf("lookup key = %q, want k", stub.gotKey)
	}
	if result.Features["vt_malicious_count"] != 5 {
		t.Errorf("vt_malicious_count = %v, want 5", result.Features["vt_malicious_count"])
	}
	if result.Features["vt_suspicious_count"] != 2 {
		t.Errorf("vt_suspicious_count = %v, want 2", result.Features["vt_suspicious_count"])
	}
	if result.Features["vt_available"] != 1 {
		t.Errorf("vt_available = %v, want 1", result.Features["vt_available"])
	}
}

func TestPredict_ReputationSkippedWithoutKey(t *testing.T) {
	stub := &stubReputation{available: true}
	p := NewPredictor(testLogger(), nil, stub)

	result, err := p.Predict(context.Background(), "https://example.com", Options{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if _, ok := result.Features["vt_available"]; ok {
		t.Fatal("reputation features present without an API key")
	}
}

func TestRuleProbability(t *testing.T) {
	// Absent has_https must not read as "no https".
	if got := ruleProbability(map[string]float64{}); got != 0 {
		t.Fatalf("ruleProbability(empty) = %v, want 0", got)
	}
	feats := map[string]float64{
		"has_ip_address":         1,
		"has_https":              0,
		"has_at_symbol":          1,
		"brand_in_subdomain":     1,
		"is_url_shortened":       1,
		"has_suspicious_keyword": 1,
		"is_suspicious_tld":      1,
		"has_punycode":           1,
		"url_length":             100,
		"subdomain_count":        4,
	}
	// All ten checks fire; the mean is capped below certainty.
	if got := ruleProbability(feats); got != 0.99 {
		t.Fatalf("ruleProbability(all) = %v, want 0.99", got)
	}
}
