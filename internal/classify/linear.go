package classify

import (
	"fmt"
	"math"
)

// LinearModel is a standardized logistic-regression classifier: inputs are
// centered and scaled with the training-set statistics, then passed through
// a weighted sum and sigmoid. Probability is for the positive (phishing)
// class.
type LinearModel struct {
	Type    string    `json:"type"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

// PredictProbability returns the phishing probability for a feature vector
// in the trained order. A wrong-length vector is a contract violation
// between the feature-name list and the trained model, and is the one
// failure this layer reports loudly.
func (m *LinearModel) PredictProbability(vector []float64) (float64, error) {
	if len(vector) != len(m.Weights) {
		return 0, fmt.Errorf("classify: feature vector has %d values, model expects %d",
			len(vector), len(m.Weights))
	}
	z := m.Bias
	for i, v := range vector {
		z += m.Weights[i] * (v - m.Means[i]) / m.Scales[i]
	}
	return sigmoid(z), nil
}

// Attribute returns the signed per-feature contributions toward the
// phishing class. For a linear model this is exact additive attribution:
// each feature's weight times its standardized deviation from the training
// mean, so the contributions sum to the logit minus its baseline.
func (m *LinearModel) Attribute(vector []float64) ([]float64, error) {
	if len(vector) != len(m.Weights) {
		return nil, fmt.Errorf("classify: feature vector has %d values, model expects %d",
			len(vector), len(m.Weights))
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = m.Weights[i] * (v - m.Means[i]) / m.Scales[i]
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
