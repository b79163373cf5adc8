// Package handlers implements the HTTP surface of the phishing detection
// service: single and batch prediction, URL-list uploads, raw feature
// inspection, and model/health introspection.
package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError writes a client-facing error in the {"detail": ...} shape.
func jsonError(w http.ResponseWriter, detail string, status int) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
