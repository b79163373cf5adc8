package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/classify"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/config"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/features"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/handlers"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/ratelimit"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/reputation"
	"github.com/GitHuntr/Real-Time-Phishing-Detection-System/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := server.SetupLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// Init components
	var domains *features.DomainExtractor
	if cfg.Lookup.AllowDomainLookups {
		domains = features.NewDomainExtractor(features.DomainLookupConfig{
			WhoisTimeout: cfg.Lookup.WhoisTimeout,
			TLSTimeout:   cfg.Lookup.TLSTimeout,
		}, logger)
	}
	vt := reputation.NewClient("", logger)
	limiter := ratelimit.New()

	// Warm-up: load the model artifact before serving begins. A missing or
	// corrupt artifact is a valid state — the predictor serves rule-based
	// verdicts until restarted with a good artifact.
	predictor := classify.NewPredictor(logger, domains, vt)
	if err := predictor.Load(cfg.Model.Path); err != nil {
		logger.Warn("no trained model available, using rule-based fallback",
			"path", cfg.Model.Path, "err", err)
	}

	handler := handlers.NewPredictHandler(predictor, cfg, logger)

	// Build router
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	r.Get("/health", handler.Health)
	r.Get("/model/info", handler.ModelInfo)

	r.Post("/predict", limited(limiter, "predict", handler.Predict))
	r.Post("/predict/batch", limited(limiter, "batch", handler.PredictBatch))
	r.Post("/predict/upload", limited(limiter, "upload", handler.PredictUpload))
	r.Get("/features/*", limited(limiter, "features", handler.Features))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port, "model_loaded", predictor.Loaded())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// limited wraps a handler with a named rate-limit bucket.
func limited(l *ratelimit.Limiter, bucket string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if l.Check(w, r, bucket) {
			return
		}
		next(w, r)
	}
}

// corsMiddleware adds CORS headers for the configured origins.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
