package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/features"
)

// Version is the API version reported by /health.
const Version = "1.0.0"

// Health handles GET /health.
func (h *PredictHandler) Health(w http.ResponseWriter, r *http.Request) {
	modelName := "none"
	if artifact := h.predictor.Artifact(); artifact != nil {
		modelName = artifact.ModelName()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": h.predictor.Loaded(),
		"model_name":   modelName,
		"version":      Version,
	})
}

// ModelInfo handles GET /model/info.
func (h *PredictHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	artifact := h.predictor.Artifact()
	if artifact == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"loaded": false,
			"mode":   "rule-based fallback",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":        true,
		"model_name":    artifact.Metadata.ModelName,
		"f1_score":      artifact.Metadata.F1Score,
		"accuracy":      artifact.Metadata.Accuracy,
		"auc":           artifact.Metadata.AUC,
		"trained_on":    artifact.Metadata.TrainedOn,
		"n_features":    artifact.Metadata.NFeatures,
		"feature_names": artifact.FeatureNames,
	})
}

// Features handles GET /features/{url}: lexical feature extraction without
// running the classifier.
func (h *PredictHandler) Features(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	raw = strings.TrimSpace(raw)

	if reason := features.ValidateURL(raw); reason != "" {
		jsonError(w, reason, http.StatusUnprocessableEntity)
		return
	}

	normalized := features.NormalizeURL(raw)
	writeJSON(w, http.StatusOK, map[string]any{
		"url":            raw,
		"normalized_url": normalized,
		"features":       features.ExtractLexical(normalized),
	})
}
