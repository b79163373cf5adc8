package handlers

import (
	"encoding/csv"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// PredictUpload handles POST /predict/upload: a multipart .txt or .csv file
// of URLs, scanned in batch mode with per-verdict summary statistics.
func (h *PredictHandler) PredictUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Upload.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64*1024) // form overhead

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file field is required", http.StatusUnprocessableEntity)
		return
	}
	defer file.Close()

	filename := header.Filename
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext != "txt" && ext != "csv" {
		jsonError(w, "Only .txt and .csv files are supported", http.StatusUnprocessableEntity)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusUnprocessableEntity)
		return
	}
	if int64(len(raw)) > maxBytes {
		jsonError(w, "File exceeds maximum size", http.StatusRequestEntityTooLarge)
		return
	}

	urls, err := parseUploadedURLs(string(raw), ext)
	if err != nil {
		jsonError(w, "Failed to parse file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if len(urls) == 0 {
		jsonError(w, "No URLs found in file", http.StatusUnprocessableEntity)
		return
	}

	deduped := dedupe(urls)
	if len(deduped) > h.cfg.Upload.MaxURLs {
		jsonError(w, "File contains too many URLs", http.StatusUnprocessableEntity)
		return
	}

	results := h.scanAll(r.Context(), deduped)

	stats := map[string]int{"phishing": 0, "suspicious": 0, "legitimate": 0, "error": 0}
	for _, entry := range results {
		stats[entry.Prediction]++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":     filename,
		"total":        len(results),
		"threat_count": stats["phishing"] + stats["suspicious"],
		"stats":        stats,
		"results":      results,
	})
}

// parseUploadedURLs extracts URLs from .txt (one per line) or .csv content.
// CSV files use the first column whose header contains "url", falling back
// to the first column.
func parseUploadedURLs(text, ext string) ([]string, error) {
	if ext == "csv" {
		reader := csv.NewReader(strings.NewReader(text))
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}

		col := 0
		for i, name := range records[0] {
			if strings.Contains(strings.ToLower(name), "url") {
				col = i
				break
			}
		}

		var urls []string
		for _, row := range records[1:] {
			if col < len(row) {
				if v := strings.TrimSpace(row[col]); v != "" {
					urls = append(urls, v)
				}
			}
		}
		return urls, nil
	}

	var urls []string
	for _, line := range strings.Split(text, "\n") {
		if v := strings.TrimSpace(line); v != "" {
			urls = append(urls, v)
		}
	}
	return urls, nil
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
