package classify

import (
	"os"
	"path/filepath"
	"testing"
)

const validArtifactJSON = `{
	"schema_version": 1,
	"model": {
		"type": "logistic_regression",
		"weights": [0.5, -1.2],
		"bias": 0.1,
		"means": [0.5, 0.0],
		"scales": [1.0, 1.0]
	},
	"feature_names": ["has_https", "has_ip_address"],
	"metadata": {
		"model_name": "logreg-v1",
		"f1_score": 0.96,
		"accuracy": 0.95,
		"auc": 0.99,
		"trained_on": "2026-08-01",
		"n_features": 2
	},
	"label_map": {"0": "legitimate", "1": "phishing"}
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadArtifact(t *testing.T) {
	artifact, err := LoadArtifact(writeArtifact(t, validArtifactJSON))
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	if artifact.ModelName() != "logreg-v1" {
		t.Errorf("model name = %q, want logreg-v1", artifact.ModelName())
	}
	if len(artifact.FeatureNames) != 2 {
		t.Errorf("feature names = %v", artifact.FeatureNames)
	}
	if artifact.Model.Weights[1] != -1.2 {
		t.Errorf("weights = %v", artifact.Model.Weights)
	}
	if artifact.LabelMap["1"] != "phishing" {
		t.Errorf("label map = %v", artifact.LabelMap)
	}
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	if _, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadArtifact_MalformedJSON(t *testing.T) {
	if _, err := LoadArtifact(writeArtifact(t, "{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadArtifact_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"no feature names",
			`{"model":{"type":"logistic_regression","weights":[1],"means":[0],"scales":[1]},"feature_names":[]}`,
		},
		{
			"weight count mismatch",
			`{"model":{"type":"logistic_regression","weights":[1],"means":[0,0],"scales":[1,1]},"feature_names":["a","b"]}`,
		},
		{
			"scaler count mismatch",
			`{"model":{"type":"logistic_regression","weights":[1,1],"means":[0],"scales":[1,1]},"feature_names":["a","b"]}`,
		},
		{
			"zero scale",
			`{"model":{"type":"logistic_regression","weights":[1],"means":[0],"scales":[0]},"feature_names":["a"]}`,
		},
		{
			"unsupported model type",
			`{"model":{"type":"random_forest","weights":[1],"means":[0],"scales":[1]},"feature_names":["a"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadArtifact(writeArtifact(t, tt.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestModelName_DefaultsToUnknown(t *testing.T) {
	a := &Artifact{}
	if got := a.ModelName(); got != "unknown" {
		t.Fatalf("ModelName = %q, want unknown", got)
	}
}
