// Package classify scores URLs for phishing risk: it fuses a trained
// classifier's probability with rule-based signals into a bounded risk score
// and three-level verdict, and attributes that verdict to individual
// features, falling back to threshold rules when no model is available.
package classify

// Attribution is one feature's signed contribution toward the phishing
// class for a single prediction.
type Attribution struct {
	Feature   string  `json:"feature"`
	Value     float64 `json:"value"`
	Weight    float64 `json:"shap_value"`
	Impact    string  `json:"impact"`    // "high", "medium", "low"
	Direction string  `json:"direction"` // "phishing" or "legitimate"
}

// TopFeature is the display form of a leading attribution.
type TopFeature struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"shap_value"` // |weight|*100, rounded to 2 decimals
	Direction   string  `json:"direction"`
	Description string  `json:"description"`
}

// Result is the per-request prediction output. It is assembled once and
// never mutated afterwards.
type Result struct {
	URL           string             `json:"url"`
	NormalizedURL string             `json:"normalized_url"`
	Prediction    string             `json:"prediction"`
	Probability   float64            `json:"phishing_probability"`
	Confidence    float64            `json:"confidence"`
	RiskScore     int                `json:"risk_score"`
	RiskLevel     string             `json:"risk_level"`
	RiskColor     string             `json:"risk_color"`
	Explanations  []string           `json:"explanations"`
	TopFeatures   []TopFeature       `json:"top_features"`
	Features      map[string]float64 `json:"features"`
	ModelUsed     string             `json:"model_used"`
	LatencyMs     float64            `json:"latency_ms"`
	Timestamp     string             `json:"timestamp"`
}
