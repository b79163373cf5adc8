// Package reputation provides a thin HTTP client for the VirusTotal v3 URL
// endpoint, supplying third-party engine verdict counts as a supplemental
// signal. Every failure mode degrades to an unavailable result; nothing in
// this package raises into the prediction pipeline.
package reputation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://www.virustotal.com"
	httpTimeout    = 10 * time.Second
	maxResponseLen = 1 << 20 // 1 MiB
)

// Client queries VirusTotal for prior analysis of a URL, keyed by the
// SHA-256 of the URL string.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a VirusTotal client. baseURL overrides the production
// endpoint for tests; pass "" for the default.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

// Lookup returns the malicious and suspicious engine counts from the last
// analysis of url. A missing key, network error, non-200 status, or
// malformed body all yield (0, 0, false).
func (c *Client) Lookup(ctx context.Context, url, apiKey string) (malicious, suspicious int, available bool) {
	if apiKey == "" {
		return 0, 0, false
	}

	sum := sha256.Sum256([]byte(url))
	id := hex.EncodeToString(sum[:])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v3/urls/"+id, nil)
	if err != nil {
		return 0, 0, false
	}
	req.Header.Set("x-apikey", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("virustotal request failed", "err", err)
		return 0, 0, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil || resp.StatusCode != http.StatusOK {
		c.logger.Debug("virustotal lookup unavailable", "status", resp.StatusCode)
		return 0, 0, false
	}

	stats := gjson.GetBytes(body, "data.attributes.last_analysis_stats")
	if !stats.Exists() {
		return 0, 0, false
	}
	return int(stats.Get("malicious").Int()), int(stats.Get("suspicious").Int()), true
}
