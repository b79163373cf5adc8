package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the trained model inside an artifact.
type Metadata struct {
	ModelName string  `json:"model_name"`
	F1Score   float64 `json:"f1_score"`
	Accuracy  float64 `json:"accuracy"`
	AUC       float64 `json:"auc"`
	TrainedOn string  `json:"trained_on"`
	NFeatures int     `json:"n_features"`
}

// Artifact is the immutable bundle produced by training: the classifier
// parameters, the exact feature order it was trained against, descriptive
// metadata, and the class-index-to-label mapping. It is loaded once and
// shared read-only across concurrent predictions.
type Artifact struct {
	SchemaVersion int               `json:"schema_version"`
	Model         LinearModel       `json:"model"`
	FeatureNames  []string          `json:"feature_names"`
	Metadata      Metadata          `json:"metadata"`
	LabelMap      map[string]string `json:"label_map"`
}

// LoadArtifact reads and validates a model artifact from path.
// Deserialization is all-or-nothing: any missing or inconsistent field is a
// load failure, leaving the caller in rule-based fallback mode.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: read artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("classify: decode artifact: %w", err)
	}
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("classify: invalid artifact %s: %w", path, err)
	}
	return &artifact, nil
}

func (a *Artifact) validate() error {
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("empty feature name list")
	}
	n := len(a.FeatureNames)
	if len(a.Model.Weights) != n {
		return fmt.Errorf("model has %d weights for %d features", len(a.Model.Weights), n)
	}
	if len(a.Model.Means) != n || len(a.Model.Scales) != n {
		return fmt.Errorf("scaler has %d/%d parameters for %d features",
			len(a.Model.Means), len(a.Model.Scales), n)
	}
	for i, s := range a.Model.Scales {
		if s == 0 {
			return fmt.Errorf("zero scale for feature %q", a.FeatureNames[i])
		}
	}
	if a.Model.Type != "logistic_regression" {
		return fmt.Errorf("unsupported model type %q", a.Model.Type)
	}
	return nil
}

// ModelName returns the metadata model name, or "unknown" when absent.
func (a *Artifact) ModelName() string {
	if a.Metadata.ModelName == "" {
		return "unknown"
	}
	return a.Metadata.ModelName
}
