package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/classify"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/config"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/features"
)

const (
	maxBatchURLs      = 50
	batchConcurrency  = 8
	maxBatchExplained = 3

	// requestTimeout bounds the whole prediction including the domain
	// lookup phase; on expiry the lookups degrade to sentinels.
	requestTimeout = 20 * time.Second
)

// PredictHandler serves the detection endpoints.
type PredictHandler struct {
	predictor *classify.Predictor
	cfg       config.Config
	logger    *slog.Logger
}

// NewPredictHandler creates the detection handler.
func NewPredictHandler(predictor *classify.Predictor, cfg config.Config, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{predictor: predictor, cfg: cfg, logger: logger}
}

type predictRequest struct {
	URL                   string `json:"url"`
	IncludeDomainFeatures bool   `json:"include_domain_features"`
	VTAPIKey              string `json:"vt_api_key"`
}

// Predict handles POST /predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if reason := features.ValidateURL(req.URL); reason != "" {
		jsonError(w, reason, http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.predictor.Predict(ctx, req.URL, h.options(req))
	if err != nil {
		h.logger.Error("prediction failed", "url", req.URL, "err", err)
		jsonError(w, "Internal prediction error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// options maps a request onto prediction options, applying the global
// domain-lookup gate and the configured VirusTotal key fallback.
func (h *PredictHandler) options(req predictRequest) classify.Options {
	opts := classify.Options{
		IncludeDomainFeatures: req.IncludeDomainFeatures && h.cfg.Lookup.AllowDomainLookups,
		VirusTotalKey:         req.VTAPIKey,
	}
	if opts.VirusTotalKey == "" {
		opts.VirusTotalKey = h.cfg.Lookup.VirusTotalKey
	}
	return opts
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

// batchEntry is the per-URL outcome of a batch scan. Error is set (and the
// verdict fields degenerate) when a URL could not be processed.
type batchEntry struct {
	URL          string   `json:"url"`
	Prediction   string   `json:"prediction"`
	RiskScore    int      `json:"risk_score"`
	Confidence   float64  `json:"confidence"`
	Explanations []string `json:"explanations"`
	Error        string   `json:"error,omitempty"`
}

// PredictBatch handles POST /predict/batch: up to 50 URLs, lexical features
// only (domain lookups are too slow for batch mode).
func (h *PredictHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		jsonError(w, "URLs list cannot be empty", http.StatusUnprocessableEntity)
		return
	}
	if len(req.URLs) > maxBatchURLs {
		jsonError(w, "Maximum 50 URLs per batch request", http.StatusUnprocessableEntity)
		return
	}

	results := h.scanAll(r.Context(), req.URLs)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// scanAll fans the URLs out over a bounded worker group, preserving input
// order in the result slice.
func (h *PredictHandler) scanAll(ctx context.Context, urls []string) []batchEntry {
	results := make([]batchEntry, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, rawURL := range urls {
		i, rawURL := i, rawURL
		g.Go(func() error {
			results[i] = h.scanOne(gctx, rawURL)
			return nil
		})
	}
	g.Wait()
	return results
}

func (h *PredictHandler) scanOne(ctx context.Context, rawURL string) batchEntry {
	if reason := features.ValidateURL(rawURL); reason != "" {
		return batchEntry{
			URL:          rawURL,
			Prediction:   "error",
			RiskScore:    -1,
			Explanations: []string{},
			Error:        reason,
		}
	}

	result, err := h.predictor.Predict(ctx, rawURL, classify.Options{})
	if err != nil {
		h.logger.Error("batch prediction failed", "url", rawURL, "err", err)
		return batchEntry{
			URL:          rawURL,
			Prediction:   "error",
			RiskScore:    -1,
			Explanations: []string{},
			Error:        "Internal prediction error",
		}
	}

	explanations := result.Explanations
	if len(explanations) > maxBatchExplained {
		explanations = explanations[:maxBatchExplained]
	}
	return batchEntry{
		URL:          rawURL,
		Prediction:   result.Prediction,
		RiskScore:    result.RiskScore,
		Confidence:   result.Confidence,
		Explanations: explanations,
	}
}
