package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all PhishGuard configuration.
type Config struct {
	Server ServerConfig
	Model  ModelConfig
	Lookup LookupConfig
	Upload UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string
	LogLevel       string
	AllowedOrigins []string
}

// ModelConfig holds model artifact settings.
type ModelConfig struct {
	Path string
}

// LookupConfig holds settings for network-bound domain lookups.
type LookupConfig struct {
	// AllowDomainLookups globally gates WHOIS/TLS feature extraction.
	// When false, requests asking for domain features get sentinel values.
	AllowDomainLookups bool
	WhoisTimeout       time.Duration
	TLSTimeout         time.Duration
	VirusTotalKey      string
}

// UploadConfig bounds the /predict/upload endpoint.
type UploadConfig struct {
	MaxURLs  int
	MaxBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8000"),
			LogLevel:       getenv("LOG_LEVEL", "info"),
			AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "*")),
		},
		Model: ModelConfig{
			Path: getenv("PHISHGUARD_MODEL_PATH", "models/phishguard_model.json"),
		},
		Lookup: LookupConfig{
			AllowDomainLookups: getenvBool("PHISHGUARD_DOMAIN_LOOKUPS", true),
			WhoisTimeout:       getenvDuration("PHISHGUARD_WHOIS_TIMEOUT", 5*time.Second),
			TLSTimeout:         getenvDuration("PHISHGUARD_TLS_TIMEOUT", 5*time.Second),
			VirusTotalKey:      os.Getenv("VIRUSTOTAL_API_KEY"),
		},
		Upload: UploadConfig{
			MaxURLs:  getenvInt("MAX_UPLOAD_URLS", 500),
			MaxBytes: int64(getenvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
